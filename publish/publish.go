// Package publish validates and applies the changes users make: new and edited posts,
// comments and follows.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"yatube/auth"
	"yatube/config"
	"yatube/db"
	"yatube/forms"
	"yatube/logs"
	"yatube/models"
	"yatube/storage"
	"yatube/utils"
)

const (
	ImageDir = "posts"
	ThumbDir = "posts/thumbs"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("only the author may change the post")
	ErrLoginRequired = errors.New("login required")
	ErrNoImage       = errors.New("the post has no image")
)

type Service struct {
	Storage   storage.StorageAPI
	ThumbSize uint
}

func New(s storage.StorageAPI) *Service {
	return &Service{Storage: s, ThumbSize: uint(config.THUMB_SIZE)}
}

// checked image ready to be stored
type image struct {
	name  string
	data  []byte
	thumb []byte
}

// storedImage is the pair of storage paths of one saved image
type storedImage struct {
	Image string
	Thumb string
}

// EditForm fills a post form with the current values of p
func EditForm(p *models.Post) forms.Post {
	f := forms.Post{Text: p.Text}
	if p.GroupID != nil {
		f.Group = strconv.FormatUint(*p.GroupID, 10)
	}
	return f
}

func loginError(actor *models.User, action auth.Action, post *models.Post) error {
	switch auth.Decide(actor, action, post) {
	case auth.DenyToLogin:
		return ErrLoginRequired
	case auth.DenyToResource:
		return ErrForbidden
	}
	return nil
}

// thumbnail decodes the image read from r and returns its JPEG thumbnail
func (s *Service) thumbnail(ctx context.Context, r io.Reader) ([]byte, error) {
	var thumb bytes.Buffer
	result, err := utils.CreateThumb(s.ThumbSize, r, &thumb)
	if err != nil {
		return nil, err
	}
	logs.Ctx(ctx).Debug().
		Str("format", result.Format).
		Uint16("width", result.OldX).
		Uint16("height", result.OldY).
		Uint16("thumb_width", result.NewX).
		Uint16("thumb_height", result.NewY).
		Int64("thumb_size", result.ThumbSize).
		Msg("thumbnail created")
	return thumb.Bytes(), nil
}

// validate runs every check of the post form, the image is decoded and its thumbnail built here
func (s *Service) validate(ctx context.Context, tx *gorm.DB, f *forms.Post) (*image, forms.Errors, error) {
	errs := f.Clean()
	if id := f.GroupID(); id != nil {
		var count int64
		if err := tx.Model(&models.Group{}).Where("id = ?", *id).Count(&count).Error; err != nil {
			return nil, nil, fmt.Errorf("check group: %w", err)
		}
		if count == 0 {
			errs.Add("group", forms.MsgInvalidChoice)
		}
	}
	if f.Image == nil || len(f.Image.Data) == 0 || errs.Has("image") {
		return nil, errs, nil
	}
	thumb, err := s.thumbnail(ctx, bytes.NewReader(f.Image.Data))
	if err != nil {
		errs.Add("image", forms.MsgInvalidImage)
		return nil, errs, nil
	}
	return &image{name: f.Image.Filename, data: f.Image.Data, thumb: thumb}, errs, nil
}

func (s *Service) save(img *image) (stored storedImage, err error) {
	name := img.name
	if name == "" {
		name = "image"
	}
	stored.Image = storage.UniqueName(s.Storage, ImageDir, name)
	if _, err = s.Storage.Save(stored.Image, bytes.NewReader(img.data)); err != nil {
		return storedImage{}, fmt.Errorf("save image: %w", err)
	}
	base := strings.TrimSuffix(path.Base(stored.Image), path.Ext(stored.Image))
	stored.Thumb = storage.UniqueName(s.Storage, ThumbDir, base+".jpg")
	if _, err = s.Storage.Save(stored.Thumb, bytes.NewReader(img.thumb)); err != nil {
		_ = s.Storage.Delete(stored.Image)
		return storedImage{}, fmt.Errorf("save thumbnail: %w", err)
	}
	return stored, nil
}

func (s *Service) remove(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.Storage.Delete(p); err != nil {
			logs.Ctx(ctx).Warn().Err(err).Str("path", p).Msg("removing media file failed")
		}
	}
}

// CreatePost adds a post by actor. Validation problems come back as form errors with a nil post.
func (s *Service) CreatePost(ctx context.Context, actor *models.User, f *forms.Post) (*models.Post, forms.Errors, error) {
	if err := loginError(actor, auth.ActionCreatePost, nil); err != nil {
		return nil, nil, err
	}
	tx := db.Instance.WithContext(ctx)
	img, errs, err := s.validate(ctx, tx, f)
	if err != nil || !errs.Valid() {
		return nil, errs, err
	}
	post := &models.Post{AuthorID: actor.ID, Text: f.Text, GroupID: f.GroupID()}
	var stored storedImage
	if img != nil {
		if stored, err = s.save(img); err != nil {
			return nil, nil, err
		}
		post.Image, post.Thumb = stored.Image, stored.Thumb
	}
	err = tx.Transaction(func(tx *gorm.DB) error {
		return post.Create(tx)
	})
	if err != nil {
		s.remove(ctx, stored.Image, stored.Thumb)
		return nil, nil, fmt.Errorf("create post: %w", err)
	}
	logs.Ctx(ctx).Info().Uint64("post", post.ID).Uint64(logs.FieldUserID, actor.ID).Msg("post created")
	return post, errs, nil
}

// Post loads a post for editing, only its author gets it
func (s *Service) Post(ctx context.Context, actor *models.User, id uint64) (*models.Post, error) {
	var post models.Post
	if err := db.Instance.WithContext(ctx).Preload("Group").First(&post, id).Error; err != nil {
		if models.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	if err := loginError(actor, auth.ActionEditPost, &post); err != nil {
		return &post, err
	}
	return &post, nil
}

// EditPost changes text, group and image of an existing post; author and publication date stay.
// A new image replaces the old one, image-clear drops it.
func (s *Service) EditPost(ctx context.Context, actor *models.User, id uint64, f *forms.Post) (*models.Post, forms.Errors, error) {
	post, err := s.Post(ctx, actor, id)
	if err != nil {
		return post, nil, err
	}
	tx := db.Instance.WithContext(ctx)
	img, errs, err := s.validate(ctx, tx, f)
	if err != nil || !errs.Valid() {
		return post, errs, err
	}

	old := storedImage{Image: post.Image, Thumb: post.Thumb}
	var stored storedImage
	switch {
	case img != nil:
		if stored, err = s.save(img); err != nil {
			return post, nil, err
		}
		post.Image, post.Thumb = stored.Image, stored.Thumb
	case f.WantsImageCleared():
		post.Image, post.Thumb = "", ""
	default:
		old = storedImage{}
	}
	post.Text = f.Text
	post.GroupID = f.GroupID()
	post.Group = nil

	err = tx.Transaction(func(tx *gorm.DB) error {
		return post.Save(tx)
	})
	if err != nil {
		s.remove(ctx, stored.Image, stored.Thumb)
		return post, nil, fmt.Errorf("save post: %w", err)
	}
	s.remove(ctx, old.Image, old.Thumb)
	logs.Ctx(ctx).Info().Uint64("post", post.ID).Uint64(logs.FieldUserID, actor.ID).Msg("post edited")
	return post, errs, nil
}

// RebuildThumb makes the thumbnail of a post again from the stored original, for example after
// the thumbnail size changed
func (s *Service) RebuildThumb(ctx context.Context, id uint64) (*models.Post, error) {
	tx := db.Instance.WithContext(ctx)
	var post models.Post
	if err := tx.First(&post, id).Error; err != nil {
		if models.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	if post.Image == "" {
		return &post, ErrNoImage
	}
	var original bytes.Buffer
	if _, err := s.Storage.Load(post.Image, &original); err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	thumb, err := s.thumbnail(ctx, &original)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}
	thumbPath := post.Thumb
	if thumbPath == "" {
		base := strings.TrimSuffix(path.Base(post.Image), path.Ext(post.Image))
		thumbPath = storage.UniqueName(s.Storage, ThumbDir, base+".jpg")
	}
	if _, err = s.Storage.Save(thumbPath, bytes.NewReader(thumb)); err != nil {
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}
	if thumbPath != post.Thumb {
		post.Thumb = thumbPath
		if err = post.Save(tx); err != nil {
			s.remove(ctx, thumbPath)
			return nil, fmt.Errorf("save post: %w", err)
		}
	}
	logs.Ctx(ctx).Info().Uint64("post", post.ID).Str("thumb", thumbPath).Msg("thumbnail rebuilt")
	return &post, nil
}

func (s *Service) AddComment(ctx context.Context, actor *models.User, postID uint64, f *forms.Comment) (*models.Comment, forms.Errors, error) {
	if err := loginError(actor, auth.ActionComment, nil); err != nil {
		return nil, nil, err
	}
	tx := db.Instance.WithContext(ctx)
	var count int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, nil, fmt.Errorf("check post: %w", err)
	}
	if count == 0 {
		return nil, nil, ErrNotFound
	}
	errs := f.Clean()
	if !errs.Valid() {
		return nil, errs, nil
	}
	comment := &models.Comment{PostID: postID, AuthorID: actor.ID, Text: f.Text}
	if err := comment.Create(tx); err != nil {
		return nil, nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, errs, nil
}

func (s *Service) author(ctx context.Context, username string) (*models.User, error) {
	var author models.User
	if err := db.Instance.WithContext(ctx).First(&author, "username = ?", username).Error; err != nil {
		if models.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load author: %w", err)
	}
	return &author, nil
}

// Follow subscribes actor to the author's posts. Following twice or following oneself changes nothing.
func (s *Service) Follow(ctx context.Context, actor *models.User, username string) (*models.User, error) {
	if err := loginError(actor, auth.ActionFollow, nil); err != nil {
		return nil, err
	}
	author, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	if !auth.CanFollow(actor, author) {
		return author, nil
	}
	created, err := models.FollowCreate(db.Instance.WithContext(ctx), actor.ID, author.ID)
	if err != nil {
		return nil, fmt.Errorf("follow: %w", err)
	}
	if created {
		logs.Ctx(ctx).Info().Uint64(logs.FieldUserID, actor.ID).Str("author", author.Username).Msg("follow")
	}
	return author, nil
}

func (s *Service) Unfollow(ctx context.Context, actor *models.User, username string) (*models.User, error) {
	if err := loginError(actor, auth.ActionFollow, nil); err != nil {
		return nil, err
	}
	author, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	if err = models.FollowDelete(db.Instance.WithContext(ctx), actor.ID, author.ID); err != nil {
		return nil, fmt.Errorf("unfollow: %w", err)
	}
	return author, nil
}
