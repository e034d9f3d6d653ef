package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/UkralStul/circle-replies-service/internal/config"
	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/reply"
	"github.com/UkralStul/circle-replies-service/internal/storage"
)

const demoTokenTTL = 24 * time.Hour

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill storage with demo users, posts and replies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Storage == config.StorageInMemory {
				a.log.Warn("seeding in-memory storage, data is lost when the command exits")
			}
			_, err = a.seed(cmd.Context(), cmd.OutOrStdout())
			return err
		},
	}
}

type seedResult struct {
	Users   []*domain.User
	Posts   []*domain.Post
	Replies []*domain.ReplyView
}

func (a *app) seed(ctx context.Context, out io.Writer) (*seedResult, error) {
	res, err := fillWithDemoData(ctx, a.store, a.service)
	if err != nil {
		return nil, err
	}

	token, err := a.gate.Issue(res.Users[0].ID, demoTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue demo token: %w", err)
	}

	a.log.Info("demo data filled",
		"users", len(res.Users), "posts", len(res.Posts), "replies", len(res.Replies))
	for _, p := range res.Posts {
		_, _ = fmt.Fprintf(out, "post %s  %q\n", p.ID, p.Title)
	}
	_, _ = fmt.Fprintf(out, "token for %s: %s\n", res.Users[0].Username, token)
	return res, nil
}

// fillWithDemoData создаёт пользователей и посты напрямую, а ответы - через
// сервис, чтобы счётчики постов совпадали с числом ответов.
func fillWithDemoData(ctx context.Context, st storage.Seeder, svc *reply.Service) (*seedResult, error) {
	res := &seedResult{}

	// 1. Пользователи: локальный аватар, абсолютный аватар и без аватара.
	for _, u := range []*domain.User{
		{Username: "alice", Avatar: "/uploads/avatars/alice.png"},
		{Username: "bob", Avatar: "https://cdn.example.com/avatars/bob.jpg"},
		{Username: "carol"},
	} {
		created, err := st.CreateUser(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("fillWithDemoData: failed to create user %s: %w", u.Username, err)
		}
		res.Users = append(res.Users, created)
	}
	alice, bob, carol := res.Users[0], res.Users[1], res.Users[2]

	// 2. Посты.
	for _, p := range []*domain.Post{
		{Title: "Weekend hiking circle", AuthorID: alice.ID},
		{Title: "Sourdough starters", AuthorID: bob.ID},
	} {
		created, err := st.CreatePost(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("fillWithDemoData: failed to create post %q: %w", p.Title, err)
		}
		res.Posts = append(res.Posts, created)
	}
	hiking, sourdough := res.Posts[0], res.Posts[1]

	add := func(authorID string, in reply.CreateInput) (*domain.ReplyView, error) {
		page, err := svc.Create(ctx, authorID, in)
		if err != nil {
			return nil, fmt.Errorf("fillWithDemoData: failed to create reply %q: %w", in.Content, err)
		}
		res.Replies = append(res.Replies, page.Comments[0])
		return page.Comments[0], nil
	}

	// 3. Корневой ответ и ветка под ним.
	root, err := add(bob.ID, reply.CreateInput{PostID: hiking.ID, Content: "Count me in for Saturday!"})
	if err != nil {
		return nil, err
	}
	if _, err := add(alice.ID, reply.CreateInput{
		PostID:        hiking.ID,
		Content:       "Great, meet at the trailhead at 8.",
		ParentReplyID: &root.ID,
		ReplyToUserID: &bob.ID,
	}); err != nil {
		return nil, err
	}
	if _, err := add(carol.ID, reply.CreateInput{
		PostID:        hiking.ID,
		Content:       "Can I bring my dog?",
		ParentReplyID: &root.ID,
	}); err != nil {
		return nil, err
	}

	// 4. Ещё корневые ответы на оба поста.
	if _, err := add(carol.ID, reply.CreateInput{PostID: hiking.ID, Content: "Is the route beginner friendly?"}); err != nil {
		return nil, err
	}
	if _, err := add(alice.ID, reply.CreateInput{PostID: sourdough.ID, Content: "Mine is three years old now."}); err != nil {
		return nil, err
	}

	return res, nil
}
