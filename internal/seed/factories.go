package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much fake content TestData generates.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	Tags            int
	FollowsPerUser  int
}

// DefaultOptions matches the volumes the development data command
// has always produced.
func DefaultOptions() Options {
	return Options{
		Users:           10,
		PostsPerUser:    5,
		CommentsPerPost: 3,
		Tags:            8,
		FollowsPerUser:  3,
	}
}

// TestData fills the database with fake users, posts, comments, tags
// and follow edges. Every generated user gets the poster role and the
// shared password "password".
func TestData(ctx context.Context, db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)
	followRepo := repository.NewFollowRepository(db)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tags := make([]models.Tag, 0, opts.Tags)
	for i := 0; i < opts.Tags; i++ {
		tag, err := tagRepo.GetOrCreate(ctx, gofakeit.Word())
		if err != nil {
			return err
		}
		tags = append(tags, *tag)
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := strings.ToLower(fmt.Sprintf("%s%d", gofakeit.Username(), i))
		if len(username) > 32 {
			username = username[:32]
		}
		user := &models.User{
			Username: username,
			Password: string(hashed),
			AboutMe:  gofakeit.Sentence(8),
		}
		if err := userRepo.Create(ctx, user, models.RoleDefault); err != nil {
			return err
		}
		if err := userRepo.GrantRole(ctx, user.ID, models.RolePoster); err != nil {
			return err
		}
		users = append(users, user)
	}

	for _, user := range users {
		for p := 0; p < opts.PostsPerUser; p++ {
			post := &models.Post{
				Title:       gofakeit.Sentence(4),
				Text:        gofakeit.Paragraph(2, 4, 12, "\n"),
				PublishDate: gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()),
				UserID:      user.ID,
			}
			if len(tags) > 0 {
				post.Tags = []models.Tag{
					tags[gofakeit.Number(0, len(tags)-1)],
					tags[gofakeit.Number(0, len(tags)-1)],
				}
			}
			if err := postRepo.Create(ctx, post); err != nil {
				return err
			}

			for m := 0; m < opts.CommentsPerPost; m++ {
				author := users[gofakeit.Number(0, len(users)-1)]
				authorID := author.ID
				comment := &models.Comment{
					Name:   author.Username,
					Text:   gofakeit.Sentence(12),
					Date:   gofakeit.DateRange(post.PublishDate, time.Now()),
					PostID: post.ID,
					UserID: &authorID,
				}
				if err := commentRepo.Create(ctx, comment); err != nil {
					return err
				}
			}
		}
	}

	for _, user := range users {
		for f := 0; f < opts.FollowsPerUser; f++ {
			target := users[gofakeit.Number(0, len(users)-1)]
			if target.ID == user.ID {
				continue
			}
			if err := followRepo.Follow(ctx, user.ID, target.ID); err != nil {
				return err
			}
		}
	}

	// The sidebar aggregate is stale the moment seeding finishes.
	cache.InvalidateSidebar(ctx)

	slog.Info("test data generated",
		"users", len(users), "posts_per_user", opts.PostsPerUser, "tags", len(tags))
	return nil
}
