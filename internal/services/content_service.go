package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
	"github.com/goer-app/goer/backend/internal/storage"
	"github.com/goer-app/goer/backend/pkg/logger"
)

// ContentService manages posts, the feed and comments.
type ContentService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	accounts repositories.AccountRepository
	follows  repositories.FollowRepository
	items    items
	notifier *Notifier
	storage  storage.Storage
}

func NewContentService(
	posts repositories.PostRepository,
	reviews repositories.ReviewRepository,
	comments repositories.CommentRepository,
	reactions repositories.ReactionRepository,
	accounts repositories.AccountRepository,
	follows repositories.FollowRepository,
	notifier *Notifier,
	store storage.Storage,
) *ContentService {
	return &ContentService{
		posts:    posts,
		comments: comments,
		accounts: accounts,
		follows:  follows,
		items:    items{posts: posts, reviews: reviews, comments: comments, reactions: reactions, accounts: accounts, follows: follows},
		notifier: notifier,
		storage:  store,
	}
}

func postRef(p *models.Post) models.ItemRef {
	return models.ItemRef{Model: models.ItemPost, Document: p.ID}
}

func commentRef(c *models.Comment) models.ItemRef {
	return models.ItemRef{Model: models.ItemComment, Document: c.ID}
}

// storePictures uploads pictures and returns their URLs. On failure the
// pictures stored so far are removed again.
func (s *ContentService) storePictures(ctx context.Context, owner primitive.ObjectID, uploads []Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		url, err := storeUpload(ctx, s.storage, "posts/"+owner.Hex(), u)
		if err != nil {
			dropUploads(ctx, s.storage, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// CreatePost validates and stores a post, then notifies mentioned accounts.
func (s *ContentService) CreatePost(ctx context.Context, caller *policy.Caller, req models.CreatePostRequest, pictures []Upload) (*models.Post, error) {
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: policy.KindPost}); err != nil {
		return nil, err
	}
	post := &models.Post{User: caller.ID, Title: strings.TrimSpace(req.Title), Text: strings.TrimSpace(req.Text)}

	if req.Business != "" {
		id, err := parseID(req.Business, "business")
		if err != nil {
			return nil, err
		}
		b, err := s.accounts.GetByID(ctx, id)
		if err != nil || b.Role != models.RoleBusiness {
			return nil, errs.NotFound("Business not found")
		}
		post.Business = &id
	}
	if post.Business == nil && post.Title == "" {
		return nil, errs.Validation("Place is required")
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, errs.Validation("Location is required")
	}
	post.Location = &models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if post.Text == "" && len(pictures) == 0 {
		return nil, errs.Validation("Text or pictures are required")
	}

	mentions, err := parseMentions(ctx, s.accounts, req.Mentions)
	if err != nil {
		return nil, err
	}
	post.Mentions = mentions

	urls, err := s.storePictures(ctx, caller.ID, pictures)
	if err != nil {
		return nil, err
	}
	post.Pictures = urls

	if err := s.posts.Create(ctx, post); err != nil {
		dropUploads(ctx, s.storage, urls)
		return nil, errs.Upstream(err, "Failed to save post")
	}
	if err := s.notifier.SyncMentions(ctx, caller.ID, postRef(post), nil, post.Mentions); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns a post visible to caller.
func (s *ContentService) GetPost(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (*models.PostView, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Post not found")
	}
	author, err := s.accounts.GetByID(ctx, post.User)
	if err != nil {
		return nil, storeErr(err, "Post not found")
	}
	ok, err := canSeeAuthor(ctx, s.follows, caller, author)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPrivateContent
	}
	counts, err := s.items.counts(ctx, caller, postRef(post))
	if err != nil {
		return nil, err
	}
	return &models.PostView{Post: *post, Author: author.ToCompact(), Reactions: counts}, nil
}

// UpdatePost edits text, pictures and mentions of the caller's post.
func (s *ContentService) UpdatePost(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, req models.UpdatePostRequest, pictures []Upload) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Post not found")
	}
	if err := policy.Can(caller, policy.ActionUpdate, policy.Resource{Kind: policy.KindPost, Owner: post.User}); err != nil {
		return nil, err
	}

	if req.Text != nil {
		post.Text = strings.TrimSpace(*req.Text)
	}
	drop := make(map[string]bool, len(req.RemovePictures))
	for _, url := range req.RemovePictures {
		drop[url] = true
	}
	kept := make([]string, 0, len(post.Pictures))
	var removed []string
	for _, url := range post.Pictures {
		if drop[url] {
			removed = append(removed, url)
			continue
		}
		kept = append(kept, url)
	}
	if post.Text == "" && len(kept) == 0 && len(pictures) == 0 {
		return nil, errs.Validation("Text or pictures are required")
	}

	prevMentions := post.Mentions
	if req.Mentions != nil {
		mentions, err := parseMentions(ctx, s.accounts, req.Mentions)
		if err != nil {
			return nil, err
		}
		post.Mentions = mentions
	}

	added, err := s.storePictures(ctx, caller.ID, pictures)
	if err != nil {
		return nil, err
	}
	post.Pictures = append(kept, added...)

	if err := s.posts.Update(ctx, post); err != nil {
		dropUploads(ctx, s.storage, added)
		return nil, storeErr(err, "Post not found")
	}
	dropUploads(ctx, s.storage, removed)

	if err := s.notifier.SyncMentions(ctx, caller.ID, postRef(post), prevMentions, post.Mentions); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post with its pictures, reactions, comments and notifications.
func (s *ContentService) DeletePost(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "Post not found")
	}
	if err := policy.Can(caller, policy.ActionDelete, policy.Resource{Kind: policy.KindPost, Owner: post.User}); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return storeErr(err, "Post not found")
	}
	dropUploads(ctx, s.storage, post.Pictures)

	ref := postRef(post)
	if err := s.notifier.Remove(ctx, models.NotificationFilter{Item: ref}); err != nil {
		return err
	}
	if err := cascadeItem(ctx, s.items, s.comments, s.notifier, ref); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("post_id", id.Hex()).Msg("failed to clean up post children")
	}
	return nil
}

// ListPosts returns the posts of user if caller may see them.
func (s *ContentService) ListPosts(ctx context.Context, caller *policy.Caller, user primitive.ObjectID, page int) ([]models.PostView, error) {
	author, err := s.accounts.GetByID(ctx, user)
	if err != nil {
		return nil, storeErr(err, "Account not found")
	}
	ok, err := canSeeAuthor(ctx, s.follows, caller, author)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPrivateContent
	}
	posts, err := s.posts.ListByUsers(ctx, []primitive.ObjectID{user}, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list posts")
	}
	return s.decoratePosts(ctx, caller, posts)
}

// Feed returns posts of the accounts caller follows with an accepted edge,
// plus caller's own, newest first.
func (s *ContentService) Feed(ctx context.Context, caller *policy.Caller, page int) ([]models.PostView, error) {
	ids, err := s.follows.FolloweeIDs(ctx, caller.ID)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to load followees")
	}
	ids = append(ids, caller.ID)
	posts, err := s.posts.ListByUsers(ctx, ids, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to load feed")
	}
	return s.decoratePosts(ctx, caller, posts)
}

func (s *ContentService) decoratePosts(ctx context.Context, caller *policy.Caller, posts []models.Post) ([]models.PostView, error) {
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.User)
	}
	authors, err := compacts(ctx, s.accounts, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.PostView, 0, len(posts))
	for i := range posts {
		counts, err := s.items.counts(ctx, caller, postRef(&posts[i]))
		if err != nil {
			return nil, err
		}
		views = append(views, models.PostView{Post: posts[i], Author: authors[posts[i].User], Reactions: counts})
	}
	return views, nil
}

// ListComments returns the comments on item, oldest first.
func (s *ContentService) ListComments(ctx context.Context, caller *policy.Caller, item models.ItemRef, page int) ([]models.CommentView, error) {
	if err := policy.Can(caller, policy.ActionList, policy.Resource{Kind: policy.KindComment}); err != nil {
		return nil, err
	}
	if _, err := s.items.visibleOwner(ctx, caller, item); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByItem(ctx, item, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list comments")
	}
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.User)
	}
	authors, err := compacts(ctx, s.accounts, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		counts, err := s.items.counts(ctx, caller, commentRef(&comments[i]))
		if err != nil {
			return nil, err
		}
		views = append(views, models.CommentView{Comment: comments[i], Author: authors[comments[i].User], Reactions: counts})
	}
	return views, nil
}

// CreateComment stores a comment and notifies the owner of the commented
// item and every mentioned account.
func (s *ContentService) CreateComment(ctx context.Context, caller *policy.Caller, req models.CreateCommentRequest) (*models.Comment, error) {
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: policy.KindComment}); err != nil {
		return nil, err
	}
	item := req.Item.Ref()
	owner, err := s.items.visibleOwner(ctx, caller, item)
	if err != nil {
		return nil, err
	}
	mentions, err := parseMentions(ctx, s.accounts, req.Mentions)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{User: caller.ID, Item: item, Text: strings.TrimSpace(req.Text), Mentions: mentions}
	if comment.Text == "" {
		return nil, errs.Validation("Text is required")
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, errs.Upstream(err, "Failed to save comment")
	}

	ref := commentRef(comment)
	if _, err := s.notifier.Notify(ctx, models.NotificationComment, caller.ID, owner, ref, NotifyOptions{Push: true, Detail: string(item.Model)}); err != nil {
		return nil, err
	}
	if err := s.notifier.SyncMentions(ctx, caller.ID, ref, nil, comment.Mentions); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment edits text and mentions of the caller's comment.
func (s *ContentService) UpdateComment(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, req models.UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Comment not found")
	}
	if err := policy.Can(caller, policy.ActionUpdate, policy.Resource{Kind: policy.KindComment, Owner: comment.User}); err != nil {
		return nil, err
	}
	if req.Text != nil {
		comment.Text = strings.TrimSpace(*req.Text)
		if comment.Text == "" {
			return nil, errs.Validation("Text is required")
		}
	}
	prev := comment.Mentions
	if req.Mentions != nil {
		mentions, err := parseMentions(ctx, s.accounts, req.Mentions)
		if err != nil {
			return nil, err
		}
		comment.Mentions = mentions
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, storeErr(err, "Comment not found")
	}
	if err := s.notifier.SyncMentions(ctx, caller.ID, commentRef(comment), prev, comment.Mentions); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment with its replies, reactions and notifications.
func (s *ContentService) DeleteComment(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "Comment not found")
	}
	if err := policy.Can(caller, policy.ActionDelete, policy.Resource{Kind: policy.KindComment, Owner: comment.User}); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return storeErr(err, "Comment not found")
	}
	ref := commentRef(comment)
	if err := s.notifier.Remove(ctx, models.NotificationFilter{Item: ref}); err != nil {
		return err
	}
	if err := cascadeItem(ctx, s.items, s.comments, s.notifier, ref); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("comment_id", id.Hex()).Msg("failed to clean up comment children")
	}
	return nil
}
