package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/db"
	"yatube/models"
	"yatube/testutil"
)

func TestStringForms(t *testing.T) {
	testutil.SetupDB(t)
	user := testutil.CreateUser(t, "auth")
	group := testutil.CreateGroup(t, "Test group", "test-slug")
	post := testutil.CreatePost(t, user, "Test post_2222222222222", nil)
	comment := models.Comment{PostID: post.ID, AuthorID: user.ID, Text: "Comment text"}
	require.NoError(t, comment.Create(db.Instance))

	assert.Equal(t, post.Text, post.String())
	assert.Equal(t, group.Title, group.String())
	assert.Equal(t, comment.Text, comment.String())
	assert.Equal(t, "auth", user.DisplayName())
	user.FirstName, user.LastName = "Leo", "Tolstoy"
	assert.Equal(t, "Leo Tolstoy", user.DisplayName())
}

func TestUserCreateAndLogin(t *testing.T) {
	testutil.SetupDB(t)
	u, err := models.UserCreate("leo", "leo@example.com", "war and peace")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "war and peace", u.Password)

	_, err = models.UserCreate("leo", "other@example.com", "x")
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
	_, err = models.UserCreate("bad name", "", "x")
	assert.ErrorIs(t, err, models.ErrInvalidUsername)
	_, err = models.UserCreate("nopass", "", "")
	assert.ErrorIs(t, err, models.ErrEmptyPassword)

	logged, ok := models.UserLogin("leo", "war and peace")
	assert.True(t, ok)
	assert.Equal(t, u.ID, logged.ID)
	_, ok = models.UserLogin("leo", "anna karenina")
	assert.False(t, ok)
	_, ok = models.UserLogin("nobody", "war and peace")
	assert.False(t, ok)
}

func TestGrantPermission(t *testing.T) {
	testutil.SetupDB(t)
	u := testutil.CreateUser(t, "staff")
	assert.False(t, u.HasPermission(models.PermissionAdmin))
	require.NoError(t, u.GrantPermission(models.PermissionAdmin))
	require.NoError(t, u.GrantPermission(models.PermissionAdmin))

	reloaded, err := models.UserByID(u.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.HasPermissions([]models.Permission{models.PermissionAdmin}))
	assert.Equal(t, []int{int(models.PermissionAdmin)}, reloaded.GetPermissions())
}

func TestGroupCreate(t *testing.T) {
	testutil.SetupDB(t)
	tests := []struct {
		name  string
		title string
		slug  string
		want  error
	}{
		{"ok", "Cats", "cats_and-dogs1", nil},
		{"duplicate slug", "Other cats", "cats_and-dogs1", models.ErrSlugTaken},
		{"bad slug", "Cats", "коты", models.ErrInvalidSlug},
		{"empty slug", "Cats", "", models.ErrInvalidSlug},
		{"empty title", "  ", "empty", models.ErrEmptyTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := models.GroupCreate(tt.title, tt.slug, "")
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
	g, err := models.GroupBySlug("cats_and-dogs1")
	require.NoError(t, err)
	assert.Equal(t, "Cats", g.Title)
	_, err = models.GroupBySlug("missing")
	assert.True(t, models.IsNotFound(err))
}

func TestPostSaveKeepsAuthorAndDate(t *testing.T) {
	testutil.SetupDB(t)
	author := testutil.CreateUser(t, "author")
	other := testutil.CreateUser(t, "other")
	group := testutil.CreateGroup(t, "Group", "group")
	post := testutil.CreatePost(t, author, "before", &group)
	created := post.CreatedAt

	post.Text = "after"
	post.GroupID = nil
	post.AuthorID = other.ID
	post.CreatedAt = created - 1000
	require.NoError(t, post.Save(db.Instance))

	saved, err := models.PostByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", saved.Text)
	assert.Nil(t, saved.GroupID)
	assert.Nil(t, saved.Group)
	assert.Equal(t, author.ID, saved.AuthorID)
	assert.Equal(t, "author", saved.Author.Username)
	assert.Equal(t, created, saved.CreatedAt)
}

func TestCommentsForPostOrder(t *testing.T) {
	testutil.SetupDB(t)
	author := testutil.CreateUser(t, "author")
	post := testutil.CreatePost(t, author, "post", nil)
	for _, text := range []string{"first", "second", "third"} {
		c := models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
		require.NoError(t, c.Create(db.Instance))
	}
	comments, err := models.CommentsForPost(db.Instance, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "third", comments[2].Text)
	assert.Equal(t, "author", comments[0].Author.Username)
}

func TestCommentRequiresExistingPost(t *testing.T) {
	testutil.SetupDB(t)
	author := testutil.CreateUser(t, "author")
	c := models.Comment{PostID: 999, AuthorID: author.ID, Text: "orphan"}
	assert.Error(t, c.Create(db.Instance))
}

func TestFollowCreateIsIdempotent(t *testing.T) {
	testutil.SetupDB(t)
	follower := testutil.CreateUser(t, "follower")
	author := testutil.CreateUser(t, "following")

	created, err := models.FollowCreate(db.Instance, follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = models.FollowCreate(db.Instance, follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Instance.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	following, err := models.IsFollowing(db.Instance, follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)
	following, err = models.IsFollowing(db.Instance, author.ID, follower.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, models.FollowDelete(db.Instance, follower.ID, author.ID))
	require.NoError(t, models.FollowDelete(db.Instance, follower.ID, author.ID))
	require.NoError(t, db.Instance.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestFollowCount(t *testing.T) {
	testutil.SetupDB(t)
	leo := testutil.CreateUser(t, "leo")
	ann := testutil.CreateUser(t, "ann")
	bob := testutil.CreateUser(t, "bob")
	for _, pair := range [][2]uint64{{ann.ID, leo.ID}, {bob.ID, leo.ID}, {leo.ID, ann.ID}} {
		_, err := models.FollowCreate(db.Instance, pair[0], pair[1])
		require.NoError(t, err)
	}

	tests := []struct {
		user      models.User
		followers int64
		following int64
	}{
		{leo, 2, 1},
		{ann, 1, 1},
		{bob, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.user.Username, func(t *testing.T) {
			followers, following, err := models.FollowCount(db.Instance, tt.user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.followers, followers)
			assert.Equal(t, tt.following, following)
		})
	}
}
