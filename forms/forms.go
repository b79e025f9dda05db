// Package forms binds and checks user input before it reaches the data model.
package forms

import (
	"strconv"
	"strings"
)

const (
	MaxImageSize = 10 << 20

	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgImageTooLarge = "The image is too large."
)

// Field describes one input of a form for the templates
type Field struct {
	Name     string
	Label    string
	HelpText string
	Required bool
}

var (
	PostFields = []Field{
		{Name: "text", Label: "Post text", HelpText: "Text of the new post", Required: true},
		{Name: "group", Label: "Group", HelpText: "Group the post will belong to"},
		{Name: "image", Label: "Image", HelpText: "Image for the post"},
	}
	CommentFields = []Field{
		{Name: "text", Label: "Comment text", HelpText: "Text of the comment", Required: true},
	}
)

// Errors maps a field name to its messages
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Valid() bool {
	return len(e) == 0
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Upload is an uploaded file read into memory
type Upload struct {
	Filename string
	Data     []byte
}

type Post struct {
	Text       string  `form:"text"`
	Group      string  `form:"group"`
	ImageClear string  `form:"image-clear"`
	Image      *Upload `form:"-"`
}

// Clean trims the input and reports the errors that need no database lookups
func (f *Post) Clean() Errors {
	errs := Errors{}
	f.Text = strings.TrimSpace(f.Text)
	f.Group = strings.TrimSpace(f.Group)
	if f.Text == "" {
		errs.Add("text", MsgRequired)
	}
	if f.Group != "" {
		if id, err := strconv.ParseUint(f.Group, 10, 64); err != nil || id == 0 {
			errs.Add("group", MsgInvalidChoice)
		}
	}
	if f.Image != nil && len(f.Image.Data) > MaxImageSize {
		errs.Add("image", MsgImageTooLarge)
	}
	return errs
}

// GroupID is the selected group, nil when none was selected or the value is malformed
func (f *Post) GroupID() *uint64 {
	id, err := strconv.ParseUint(f.Group, 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}

func (f *Post) WantsImageCleared() bool {
	return f.ImageClear != ""
}

type Comment struct {
	Text string `form:"text"`
}

func (f *Comment) Clean() Errors {
	errs := Errors{}
	f.Text = strings.TrimSpace(f.Text)
	if f.Text == "" {
		errs.Add("text", MsgRequired)
	}
	return errs
}
