package publish_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/db"
	"yatube/forms"
	"yatube/logs"
	"yatube/models"
	"yatube/publish"
	"yatube/storage"
	"yatube/testutil"
)

func newService(t *testing.T) (*publish.Service, *storage.DiskStorage) {
	disk := storage.NewDiskStorage(t.TempDir())
	return &publish.Service{Storage: disk, ThumbSize: 100}, disk
}

func postCount(t *testing.T) int64 {
	var count int64
	require.NoError(t, db.Instance.Model(&models.Post{}).Count(&count).Error)
	return count
}

func TestCreatePost(t *testing.T) {
	testutil.SetupDB(t)
	s, disk := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, "auth")
	group := testutil.CreateGroup(t, "Test group", "test-slug")

	form := &forms.Post{
		Text:  "  Test text  ",
		Group: strconv.FormatUint(group.ID, 10),
		Image: &forms.Upload{Filename: "small.gif", Data: testutil.SmallGIF(t)},
	}
	post, errs, err := s.CreatePost(ctx, &user, form)
	require.NoError(t, err)
	require.True(t, errs.Valid())
	require.NotNil(t, post)

	saved, err := models.PostByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test text", saved.Text)
	assert.Equal(t, user.ID, saved.AuthorID)
	require.NotNil(t, saved.GroupID)
	assert.Equal(t, group.ID, *saved.GroupID)
	assert.Equal(t, "posts/small.gif", saved.Image)
	assert.Equal(t, "posts/thumbs/small.jpg", saved.Thumb)
	assert.True(t, disk.Exists(saved.Image))
	assert.True(t, disk.Exists(saved.Thumb))

	// the same file name again gets a suffix
	second, _, err := s.CreatePost(ctx, &user, &forms.Post{
		Text:  "Another",
		Image: &forms.Upload{Filename: "small.gif", Data: testutil.SmallGIF(t)},
	})
	require.NoError(t, err)
	assert.NotEqual(t, saved.Image, second.Image)
	assert.Regexp(t, `^posts/small_[0-9a-f]{8}\.gif$`, second.Image)
	assert.Nil(t, second.GroupID)
}

func TestCreatePostValidation(t *testing.T) {
	testutil.SetupDB(t)
	s, _ := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, "auth")

	tests := []struct {
		name  string
		form  forms.Post
		field string
		msg   string
	}{
		{"empty text", forms.Post{Text: "   "}, "text", forms.MsgRequired},
		{"unknown group", forms.Post{Text: "x", Group: "999"}, "group", forms.MsgInvalidChoice},
		{"malformed group", forms.Post{Text: "x", Group: "abc"}, "group", forms.MsgInvalidChoice},
		{"not an image", forms.Post{Text: "x", Image: &forms.Upload{Filename: "a.gif", Data: []byte("not an image")}}, "image", forms.MsgInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.form
			post, errs, err := s.CreatePost(ctx, &user, &form)
			require.NoError(t, err)
			assert.Nil(t, post)
			assert.Equal(t, []string{tt.msg}, errs[tt.field])
			assert.Zero(t, postCount(t))
		})
	}
}

func TestCreatePostAnonymous(t *testing.T) {
	testutil.SetupDB(t)
	s, _ := newService(t)
	_, _, err := s.CreatePost(context.Background(), &models.User{}, &forms.Post{Text: "x"})
	assert.ErrorIs(t, err, publish.ErrLoginRequired)
	assert.Zero(t, postCount(t))
}

type failingStorage struct {
	*storage.DiskStorage
}

func (failingStorage) Save(string, io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

func TestCreatePostStorageFailure(t *testing.T) {
	testutil.SetupDB(t)
	s := &publish.Service{Storage: failingStorage{storage.NewDiskStorage(t.TempDir())}, ThumbSize: 100}
	user := testutil.CreateUser(t, "auth")
	_, _, err := s.CreatePost(context.Background(), &user, &forms.Post{
		Text:  "x",
		Image: &forms.Upload{Filename: "small.gif", Data: testutil.SmallGIF(t)},
	})
	assert.Error(t, err)
	assert.Zero(t, postCount(t))
}

func TestCreatePostRemovesFilesWhenInsertFails(t *testing.T) {
	testutil.SetupDB(t)
	s, disk := newService(t)
	user := testutil.CreateUser(t, "auth")
	require.NoError(t, db.Instance.Migrator().DropTable(&models.Comment{}, &models.Post{}))

	_, _, err := s.CreatePost(context.Background(), &user, &forms.Post{
		Text:  "x",
		Image: &forms.Upload{Filename: "small.gif", Data: testutil.SmallGIF(t)},
	})
	assert.Error(t, err)
	assert.False(t, disk.Exists("posts/small.gif"))
	assert.False(t, disk.Exists("posts/thumbs/small.jpg"))
}

func TestEditPost(t *testing.T) {
	testutil.SetupDB(t)
	s, disk := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, "auth")
	group := testutil.CreateGroup(t, "Test group", "test-slug")
	post, _, err := s.CreatePost(ctx, &user, &forms.Post{
		Text:  "Test text",
		Image: &forms.Upload{Filename: "small.gif", Data: testutil.SmallGIF(t)},
	})
	require.NoError(t, err)
	created := post.CreatedAt

	form := publish.EditForm(post)
	assert.Equal(t, "Test text", form.Text)
	assert.Empty(t, form.Group)
	form.Text = "Edited text"
	form.Group = strconv.FormatUint(group.ID, 10)
	_, errs, err := s.EditPost(ctx, &user, post.ID, &form)
	require.NoError(t, err)
	require.True(t, errs.Valid())

	saved, err := models.PostByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited text", saved.Text)
	assert.Equal(t, user.ID, saved.AuthorID)
	assert.Equal(t, created, saved.CreatedAt)
	require.NotNil(t, saved.Group)
	assert.Equal(t, "test-slug", saved.Group.Slug)
	assert.Equal(t, "posts/small.gif", saved.Image, "image kept when none is uploaded")

	form = publish.EditForm(&saved)
	form.ImageClear = "on"
	_, _, err = s.EditPost(ctx, &user, post.ID, &form)
	require.NoError(t, err)
	saved, err = models.PostByID(post.ID)
	require.NoError(t, err)
	assert.Empty(t, saved.Image)
	assert.Empty(t, saved.Thumb)
	assert.False(t, disk.Exists("posts/small.gif"))
	assert.False(t, disk.Exists("posts/thumbs/small.jpg"))
}

func TestEditPostPermissions(t *testing.T) {
	testutil.SetupDB(t)
	s, _ := newService(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, "auth")
	other := testutil.CreateUser(t, "other")
	post := testutil.CreatePost(t, author, "Test text", nil)

	_, _, err := s.EditPost(ctx, &other, post.ID, &forms.Post{Text: "hacked"})
	assert.ErrorIs(t, err, publish.ErrForbidden)
	_, _, err = s.EditPost(ctx, &models.User{}, post.ID, &forms.Post{Text: "hacked"})
	assert.ErrorIs(t, err, publish.ErrLoginRequired)
	_, _, err = s.EditPost(ctx, &author, post.ID+100, &forms.Post{Text: "x"})
	assert.ErrorIs(t, err, publish.ErrNotFound)

	saved, err := models.PostByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test text", saved.Text)

	_, errs, err := s.EditPost(ctx, &author, post.ID, &forms.Post{Text: ""})
	require.NoError(t, err)
	assert.True(t, errs.Has("text"))
}

func TestAddComment(t *testing.T) {
	testutil.SetupDB(t)
	s, _ := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, "auth")
	post := testutil.CreatePost(t, user, "Test text", nil)

	comment, errs, err := s.AddComment(ctx, &user, post.ID, &forms.Comment{Text: "Nice"})
	require.NoError(t, err)
	require.True(t, errs.Valid())
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, user.ID, comment.AuthorID)

	_, errs, err = s.AddComment(ctx, &user, post.ID, &forms.Comment{Text: " "})
	require.NoError(t, err)
	assert.True(t, errs.Has("text"))

	_, _, err = s.AddComment(ctx, &models.User{}, post.ID, &forms.Comment{Text: "anon"})
	assert.ErrorIs(t, err, publish.ErrLoginRequired)
	_, _, err = s.AddComment(ctx, &user, post.ID+1, &forms.Comment{Text: "lost"})
	assert.ErrorIs(t, err, publish.ErrNotFound)

	comments, err := models.CommentsForPost(db.Instance, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestFollow(t *testing.T) {
	testutil.SetupDB(t)
	s, _ := newService(t)
	ctx := context.Background()
	follower := testutil.CreateUser(t, "follower")
	following := testutil.CreateUser(t, "following")

	following2, err := s.Follow(ctx, &follower, "following")
	require.NoError(t, err)
	assert.Equal(t, following.ID, following2.ID)
	_, err = s.Follow(ctx, &follower, "following")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Instance.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = s.Follow(ctx, &follower, "follower")
	require.NoError(t, err)
	ok, err := models.IsFollowing(db.Instance, follower.ID, follower.ID)
	require.NoError(t, err)
	assert.False(t, ok, "self follow is ignored")

	_, err = s.Follow(ctx, &follower, "nobody")
	assert.ErrorIs(t, err, publish.ErrNotFound)
	_, err = s.Follow(ctx, &models.User{}, "following")
	assert.ErrorIs(t, err, publish.ErrLoginRequired)

	_, err = s.Unfollow(ctx, &follower, "following")
	require.NoError(t, err)
	_, err = s.Unfollow(ctx, &follower, "following")
	require.NoError(t, err)
	ok, err = models.IsFollowing(db.Instance, follower.ID, following.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreatePostLogsThumbnail(t *testing.T) {
	testutil.SetupDB(t)
	s, _ := newService(t)
	user := testutil.CreateUser(t, "auth")
	var out bytes.Buffer
	ctx := logs.WithLogger(context.Background(), zerolog.New(&out))

	_, _, err := s.CreatePost(ctx, &user, &forms.Post{
		Text:  "x",
		Image: &forms.Upload{Filename: "small.gif", Data: testutil.SmallGIF(t)},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"message":"thumbnail created"`)
	assert.Contains(t, out.String(), `"format":"gif"`)
	assert.Contains(t, out.String(), `"thumb_width":1`)
}

func TestRebuildThumb(t *testing.T) {
	testutil.SetupDB(t)
	s, disk := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, "auth")
	post, _, err := s.CreatePost(ctx, &user, &forms.Post{
		Text:  "x",
		Image: &forms.Upload{Filename: "small.gif", Data: testutil.SmallGIF(t)},
	})
	require.NoError(t, err)

	require.NoError(t, disk.Delete(post.Thumb))
	rebuilt, err := s.RebuildThumb(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Thumb, rebuilt.Thumb)
	assert.True(t, disk.Exists(post.Thumb))

	// a post that lost its thumbnail reference gets a new one
	require.NoError(t, disk.Delete(post.Thumb))
	require.NoError(t, db.Instance.Model(&models.Post{}).Where("id = ?", post.ID).Update("thumb", "").Error)
	rebuilt, err = s.RebuildThumb(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "posts/thumbs/small.jpg", rebuilt.Thumb)
	saved, err := models.PostByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "posts/thumbs/small.jpg", saved.Thumb)

	plain := testutil.CreatePost(t, user, "no image", nil)
	_, err = s.RebuildThumb(ctx, plain.ID)
	assert.ErrorIs(t, err, publish.ErrNoImage)
	_, err = s.RebuildThumb(ctx, plain.ID+100)
	assert.ErrorIs(t, err, publish.ErrNotFound)
}
