// Package feed builds the paginated post lists shown on the site.
//
// Every list is ordered newest first with the id as a tie breaker, so page boundaries are stable.
// Pages hold PostsPerPage posts; asking for a page past the end gives an empty page, not an error.
package feed

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"yatube/db"
	"yatube/forms"
	"yatube/models"
)

const PostsPerPage = 10

var ErrNotFound = errors.New("not found")

type Page struct {
	Posts    []models.Post
	Number   int
	NumPages int
	Count    int64 // posts in the whole list
}

func (p *Page) Len() int { return len(p.Posts) }
func (p *Page) HasNext() bool { return p.Number < p.NumPages }
func (p *Page) HasPrevious() bool { return p.Number > 1 }
func (p *Page) NextNumber() int { return p.Number + 1 }
func (p *Page) PreviousNumber() int { return p.Number - 1 }
func (p *Page) HasOtherPages() bool { return p.NumPages > 1 }
func (p *Page) PageNumbers() []int {
	numbers := make([]int, p.NumPages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}

// Detail is everything the post page shows
type Detail struct {
	Post            models.Post
	Comments        []models.Comment
	AuthorPostCount int64
	Form            forms.Comment
	Fields          []forms.Field
}

type scope = func(*gorm.DB) *gorm.DB

func list(ctx context.Context, number int, scopes ...scope) (*Page, error) {
	if number < 1 {
		number = 1
	}
	query := func() *gorm.DB {
		return db.Instance.WithContext(ctx).Model(&models.Post{}).Scopes(scopes...)
	}
	page := &Page{Number: number, Posts: []models.Post{}}
	if err := query().Count(&page.Count).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	page.NumPages = int((page.Count + PostsPerPage - 1) / PostsPerPage)
	if page.NumPages == 0 {
		page.NumPages = 1
	}
	offset := (number - 1) * PostsPerPage
	if int64(offset) >= page.Count {
		return page, nil
	}
	err := query().
		Preload("Author").
		Preload("Group").
		Order(models.NewestFirst).
		Limit(PostsPerPage).
		Offset(offset).
		Find(&page.Posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return page, nil
}

// Index lists all posts
func Index(ctx context.Context, page int) (*Page, error) {
	return list(ctx, page)
}

// ByGroup lists the posts of the group with the given slug
func ByGroup(ctx context.Context, slug string, page int) (*models.Group, *Page, error) {
	var group models.Group
	if err := db.Instance.WithContext(ctx).First(&group, "slug = ?", slug).Error; err != nil {
		if models.IsNotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("load group: %w", err)
	}
	result, err := list(ctx, page, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.group_id = ?", group.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	return &group, result, nil
}

// ByProfile lists the posts of one author; the page Count is the author's post count
func ByProfile(ctx context.Context, username string, page int) (*models.User, *Page, error) {
	var author models.User
	if err := db.Instance.WithContext(ctx).First(&author, "username = ?", username).Error; err != nil {
		if models.IsNotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("load author: %w", err)
	}
	result, err := list(ctx, page, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id = ?", author.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	return &author, result, nil
}

// FollowFeed lists the posts of the authors actor follows
func FollowFeed(ctx context.Context, actor *models.User, page int) (*Page, error) {
	if !actor.IsAuthenticated() {
		return &Page{Number: 1, NumPages: 1, Posts: []models.Post{}}, nil
	}
	return list(ctx, page, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id IN (?)", models.FollowedAuthors(tx, actor.ID))
	})
}

// PostDetail loads a post with its comments in the order they were written
func PostDetail(ctx context.Context, id uint64) (*Detail, error) {
	tx := db.Instance.WithContext(ctx)
	detail := &Detail{Fields: forms.CommentFields}
	if err := tx.Preload("Author").Preload("Group").First(&detail.Post, id).Error; err != nil {
		if models.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	var err error
	if detail.Comments, err = models.CommentsForPost(tx, id); err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	if detail.AuthorPostCount, err = models.PostCountByAuthor(tx, detail.Post.AuthorID); err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}
	return detail, nil
}
