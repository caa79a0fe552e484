package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/anonto42/placenote/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createPost(t *testing.T, repo *PostgresPostRepository, owner uint, title, address, tags string, images int, facilities ...string) *models.Post {
	t.Helper()

	post := &models.Post{UserID: owner, Title: title, Address: address}
	var rows []models.PostImage
	for i := 0; i < images; i++ {
		rows = append(rows, models.PostImage{ObjectKey: title + "-" + string(rune('a'+i)), URL: "/media/x", ContentType: "image/png"})
	}
	require.NoError(t, repo.CreatePost(context.Background(), post, models.ParseTags(tags), rows, facilities))
	return post
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}

func TestPostRepository_CreatePost(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPostRepository(db)
	ctx := context.Background()

	post := createPost(t, repo, 1, "Cafe X", "Seoul Gangnam-gu Teheran-ro 1", "a, b, b", 2, "wifi", "wifi", "parking")

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seoul", got.City)
	assert.Equal(t, uint(1), got.UserID)
	assert.Equal(t, []string{"a", "b"}, tagNames(got.Tags))
	require.Len(t, got.Images, 2)
	assert.Less(t, got.Images[0].ID, got.Images[1].ID)

	var edges int64
	require.NoError(t, db.Table("post_tags").Where("post_id = ?", post.ID).Count(&edges).Error)
	assert.Equal(t, int64(2), edges)

	facilities, err := repo.GetFacilities(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, facilities, 3)
	assert.Equal(t, "wifi", facilities[0].Code)
	assert.Equal(t, "wifi", facilities[1].Code)

	// tags are shared between posts
	createPost(t, repo, 2, "Cafe Y", "Busan", "b, c", 0)
	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.Equal(t, int64(3), tagCount)
}

// failCreatesOn makes every insert into table fail inside the running transaction
func failCreatesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("insert into " + table + " failed"))
		}
	})
	require.NoError(t, err)
}

// insertBeforeFirstCreate runs query inside the transaction right before the
// first insert into table, standing in for a concurrent writer
func insertBeforeFirstCreate(t *testing.T, db *gorm.DB, table, query string, args ...interface{}) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:race_"+table, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(query, args...).Error; err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestPostRepository_CreatePost_RollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPostRepository(db)
	failCreatesOn(t, db, "facilities")

	post := &models.Post{UserID: 1, Title: "Cafe X", Address: "Seoul"}
	images := []models.PostImage{{ObjectKey: "k1", URL: "/media/k1"}}
	err := repo.CreatePost(context.Background(), post, []string{"a", "b"}, images, []string{"wifi"})
	require.Error(t, err)

	for _, table := range []string{"posts", "post_images", "post_tags", "tags", "facilities"} {
		assert.Zero(t, countRows(t, db, table), table)
	}
}

func TestPostRepository_UpdatePost_RollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPostRepository(db)
	ctx := context.Background()

	post := createPost(t, repo, 1, "Cafe X", "Seoul Gangnam-gu", "a", 2)
	failCreatesOn(t, db, "facilities")

	_, err := repo.UpdatePost(ctx, &PostUpdate{
		PostID:         post.ID,
		EditorID:       1,
		Title:          "Cafe Z",
		Address:        "Busan",
		TagNames:       []string{"z"},
		DeleteImageIDs: []uint{post.Images[0].ID},
		NewImages:      []models.PostImage{{ObjectKey: "new", URL: "/media/new"}},
		NewFacilities:  []string{"wifi"},
	})
	require.Error(t, err)

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cafe X", got.Title)
	assert.Equal(t, "Seoul", got.City)
	assert.Equal(t, []string{"a"}, tagNames(got.Tags))
	require.Len(t, got.Images, 2)
	assert.Equal(t, post.Images[0].ID, got.Images[0].ID)
}

func TestPostRepository_GetPostByID_NotFound(t *testing.T) {
	repo := NewPostgresPostRepository(newTestDB(t))

	_, err := repo.GetPostByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_GetAllPostsAndThumbnails(t *testing.T) {
	repo := NewPostgresPostRepository(newTestDB(t))
	ctx := context.Background()

	first := createPost(t, repo, 1, "First", "Seoul", "", 2)
	second := createPost(t, repo, 1, "Second", "Busan", "", 0)
	third := createPost(t, repo, 1, "Third", "Incheon", "", 1)

	posts, err := repo.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{posts[0].ID, posts[1].ID, posts[2].ID})

	thumbs, err := repo.GetThumbnails(ctx, []uint{first.ID, second.ID, third.ID})
	require.NoError(t, err)
	assert.Len(t, thumbs, 2)
	assert.Equal(t, first.Images[0].ID, thumbs[first.ID].ID)
	assert.Equal(t, third.Images[0].ID, thumbs[third.ID].ID)
	_, ok := thumbs[second.ID]
	assert.False(t, ok)

	empty, err := repo.GetThumbnails(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostRepository_SearchPosts(t *testing.T) {
	repo := NewPostgresPostRepository(newTestDB(t))
	ctx := context.Background()

	byTitle := createPost(t, repo, 1, "Night Market Snacks", "Seoul Jongno-gu", "", 0)
	byAddress := createPost(t, repo, 1, "Bakery", "Busan MARKET street 3", "", 0)
	createPost(t, repo, 1, "Gym", "Daegu Suseong-gu", "", 0)
	createPost(t, repo, 1, "Discount 100%", "Ulsan", "", 0)

	posts, err := repo.SearchPosts(ctx, "market")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, byTitle.ID, posts[0].ID)
	assert.Equal(t, byAddress.ID, posts[1].ID)

	posts, err = repo.SearchPosts(ctx, "%")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Discount 100%", posts[0].Title)

	posts, err = repo.SearchPosts(ctx, "nothing like this")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostRepository_UpdatePost(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPostRepository(db)
	ctx := context.Background()

	post := createPost(t, repo, 1, "Cafe X", "Seoul Gangnam-gu", "a, b", 2, "wifi", "parking")
	other := createPost(t, repo, 2, "Other", "Busan", "", 1, "pet")
	facilities, err := repo.GetFacilities(ctx, post.ID)
	require.NoError(t, err)
	otherFacilities, err := repo.GetFacilities(ctx, other.ID)
	require.NoError(t, err)

	update := &PostUpdate{
		PostID:            post.ID,
		EditorID:          1,
		Title:             "Cafe Z",
		Address:           "Incheon Jung-gu",
		TagNames:          []string{"b", "c"},
		DeleteImageIDs:    []uint{post.Images[0].ID, other.Images[0].ID},
		DeleteFacilityIDs: []uint{facilities[0].ID, otherFacilities[0].ID},
		NewImages:         []models.PostImage{{ObjectKey: "new", URL: "/media/new"}},
		NewFacilities:     []string{"wifi"},
	}
	removed, err := repo.UpdatePost(ctx, update)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, post.Images[0].ID, removed[0].ID)

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Z", got.Title)
	assert.Equal(t, "Incheon", got.City)
	assert.Equal(t, uint(1), got.UserID)
	assert.Equal(t, []string{"b", "c"}, tagNames(got.Tags))
	require.Len(t, got.Images, 2)
	assert.Equal(t, post.Images[1].ID, got.Images[0].ID)
	assert.Equal(t, "new", got.Images[1].ObjectKey)

	codes, err := repo.GetFacilities(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "parking", codes[0].Code)
	assert.Equal(t, "wifi", codes[1].Code)

	// the other post keeps its image and facility
	foreign, err := repo.GetPostByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, foreign.Images, 1)
	otherFacilities, err = repo.GetFacilities(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, otherFacilities, 1)

	t.Run("repeating the delete lists is harmless", func(t *testing.T) {
		update.NewImages = nil
		update.NewFacilities = nil
		removed, err := repo.UpdatePost(ctx, update)
		require.NoError(t, err)
		assert.Empty(t, removed)
	})

	t.Run("clears tags when none are given", func(t *testing.T) {
		_, err := repo.UpdatePost(ctx, &PostUpdate{PostID: post.ID, EditorID: 1, Title: "Cafe Z", Address: "Incheon"})
		require.NoError(t, err)
		got, err := repo.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Tags)
	})

	t.Run("rejects other editors", func(t *testing.T) {
		_, err := repo.UpdatePost(ctx, &PostUpdate{PostID: post.ID, EditorID: 2, Title: "Hijack", Address: "Busan"})
		assert.ErrorIs(t, err, ErrForbidden)
		got, err := repo.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cafe Z", got.Title)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := repo.UpdatePost(ctx, &PostUpdate{PostID: 999, EditorID: 1, Title: "x", Address: "y"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostRepository_DeletePost(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPostRepository(db)
	engagements := NewPostgresEngagementRepository(db)
	ctx := context.Background()

	post := createPost(t, repo, 1, "Cafe X", "Seoul", "a", 2, "wifi")
	_, err := engagements.Toggle(ctx, post.ID, 2, models.EngagementLike)
	require.NoError(t, err)

	_, err = repo.DeletePost(ctx, post.ID, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = repo.DeletePost(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	images, err := repo.DeletePost(ctx, post.ID, 1)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	_, err = repo.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, model := range []interface{}{&models.PostImage{}, &models.Facility{}, &models.PostEngagement{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("post_id = ?", post.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
	var edges int64
	require.NoError(t, db.Table("post_tags").Where("post_id = ?", post.ID).Count(&edges).Error)
	assert.Zero(t, edges)
}

func TestTagRepository(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostgresPostRepository(db)
	tags := NewPostgresTagRepository(db)
	ctx := context.Background()

	first := createPost(t, posts, 1, "First", "Seoul", "coffee, quiet", 0)
	createPost(t, posts, 1, "Second", "Busan", "quiet", 0)
	third := createPost(t, posts, 1, "Third", "Daegu", "coffee", 0)

	var coffee models.Tag
	require.NoError(t, db.Where("name = ?", "coffee").First(&coffee).Error)

	tag, err := tags.GetTagByID(ctx, coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, "coffee", tag.Name)

	tagged, err := tags.GetPostsByTagID(ctx, coffee.ID)
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	assert.Equal(t, first.ID, tagged[0].ID)
	assert.Equal(t, third.ID, tagged[1].ID)

	_, err = tags.GetTagByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\o/`, escapeLike(`50% off_now \o/`))
}
