package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/auth"
	"yatube/db"
	"yatube/feed"
	"yatube/models"
	"yatube/utils"
)

// IndexCacheKey differs per viewer, the navigation carries the signed in user
func IndexCacheKey(requestURI string, viewerID uint64) string {
	return fmt.Sprintf("index:%s:%d", requestURI, viewerID)
}

// Index is served from the page cache, the same bytes until the entry expires or is cleared
func (s *Site) Index(c *gin.Context) {
	user := auth.CurrentUser(c)
	ctx := c.Request.Context()
	key := IndexCacheKey(c.Request.URL.RequestURI(), user.ID)
	body, err := s.Pages.Fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		page, err := feed.Index(ctx, utils.ParsePage(c.Query("page")))
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err = s.Templates.ExecuteTemplate(&buf, "index.tmpl", s.data(c, gin.H{"Page": page})); err != nil {
			return nil, fmt.Errorf("render index: %w", err)
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func (s *Site) GroupPosts(c *gin.Context) {
	group, page, err := feed.ByGroup(c.Request.Context(), c.Param("slug"), utils.ParsePage(c.Query("page")))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "group_list.tmpl", gin.H{"Title": group.Title, "Group": group, "Page": page})
}

func (s *Site) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	author, page, err := feed.ByProfile(ctx, c.Param("username"), utils.ParsePage(c.Query("page")))
	if err != nil {
		s.fail(c, err)
		return
	}
	user := auth.CurrentUser(c)
	following := false
	if user.IsAuthenticated() {
		if following, err = models.IsFollowing(db.Instance.WithContext(ctx), user.ID, author.ID); err != nil {
			s.fail(c, err)
			return
		}
	}
	followers, follows, err := models.FollowCount(db.Instance.WithContext(ctx), author.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "profile.tmpl", gin.H{
		"Title":          "Profile of " + author.DisplayName(),
		"Author":         author,
		"Page":           page,
		"Following":      following,
		"CanFollow":      auth.CanFollow(user, author),
		"FollowerCount":  followers,
		"FollowingCount": follows,
	})
}

func (s *Site) PostDetail(c *gin.Context) {
	id := utils.StringToUInt64(c.Param("id"))
	if id == 0 {
		s.NotFound(c)
		return
	}
	detail, err := feed.PostDetail(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	user := auth.CurrentUser(c)
	s.render(c, http.StatusOK, "post_detail.tmpl", gin.H{
		"Title":   "Post " + truncate(detail.Post.Text, 30),
		"Detail":  detail,
		"CanEdit": auth.Decide(user, auth.ActionEditPost, &detail.Post) == auth.Allow,
	})
}

func (s *Site) FollowIndex(c *gin.Context, user *models.User) {
	page, err := feed.FollowFeed(c.Request.Context(), user, utils.ParsePage(c.Query("page")))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "follow.tmpl", gin.H{"Title": "Follows", "Page": page})
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
