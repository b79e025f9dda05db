package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/forms"
	"yatube/models"
	"yatube/publish"
	"yatube/utils"
)

func postURL(id uint64) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

// bindPost reads the post form, the image file is read into memory up to the size limit
func bindPost(c *gin.Context) (*forms.Post, error) {
	var f forms.Post
	if err := c.ShouldBind(&f); err != nil {
		return nil, err
	}
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return &f, nil
		}
		return nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, forms.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		f.Image = &forms.Upload{Filename: header.Filename, Data: data}
	}
	return &f, nil
}

func (s *Site) postForm(c *gin.Context, f *forms.Post, errs forms.Errors, post *models.Post) {
	groups, err := models.GroupList()
	if err != nil {
		s.fail(c, err)
		return
	}
	values := gin.H{
		"Title":  "New post",
		"Form":   f,
		"Errors": errs,
		"Fields": forms.PostFields,
		"Groups": groups,
		"IsEdit": post != nil,
	}
	if post != nil {
		values["Title"] = "Edit post"
		values["Post"] = post
	}
	s.render(c, http.StatusOK, "create_post.tmpl", values)
}

func (s *Site) PostCreate(c *gin.Context, user *models.User) {
	if c.Request.Method != http.MethodPost {
		s.postForm(c, &forms.Post{}, forms.Errors{}, nil)
		return
	}
	f, err := bindPost(c)
	if err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}
	_, errs, err := s.Publish.CreatePost(c.Request.Context(), user, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !errs.Valid() {
		s.postForm(c, f, errs, nil)
		return
	}
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

func (s *Site) PostEdit(c *gin.Context, user *models.User) {
	id := utils.StringToUInt64(c.Param("id"))
	if id == 0 {
		s.NotFound(c)
		return
	}
	ctx := c.Request.Context()
	if c.Request.Method != http.MethodPost {
		post, err := s.Publish.Post(ctx, user, id)
		if errors.Is(err, publish.ErrForbidden) {
			c.Redirect(http.StatusFound, postURL(id))
			return
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		f := publish.EditForm(post)
		s.postForm(c, &f, forms.Errors{}, post)
		return
	}
	f, err := bindPost(c)
	if err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}
	post, errs, err := s.Publish.EditPost(ctx, user, id, f)
	if errors.Is(err, publish.ErrForbidden) {
		c.Redirect(http.StatusFound, postURL(id))
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if !errs.Valid() {
		s.postForm(c, f, errs, post)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}

// AddComment always returns to the post, an empty comment is dropped
func (s *Site) AddComment(c *gin.Context, user *models.User) {
	id := utils.StringToUInt64(c.Param("id"))
	if id == 0 {
		s.NotFound(c)
		return
	}
	var f forms.Comment
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}
	if _, _, err := s.Publish.AddComment(c.Request.Context(), user, id, &f); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}

func (s *Site) ProfileFollow(c *gin.Context, user *models.User) {
	author, err := s.Publish.Follow(c.Request.Context(), user, c.Param("username"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}

func (s *Site) ProfileUnfollow(c *gin.Context, user *models.User) {
	author, err := s.Publish.Unfollow(c.Request.Context(), user, c.Param("username"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}
