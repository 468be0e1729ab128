package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
)

// CatalogService manages the admin maintained lists (tags, statics,
// preferences), feedback and the saved businesses of users.
type CatalogService struct {
	tags        repositories.CatalogRepository[models.Tag]
	statics     repositories.CatalogRepository[models.Static]
	preferences repositories.CatalogRepository[models.Preference]
	feedback    repositories.CatalogRepository[models.Feedback]
	saves       repositories.SaveRepository
	accounts    repositories.AccountRepository
}

func NewCatalogService(
	tags repositories.CatalogRepository[models.Tag],
	statics repositories.CatalogRepository[models.Static],
	preferences repositories.CatalogRepository[models.Preference],
	feedback repositories.CatalogRepository[models.Feedback],
	saves repositories.SaveRepository,
	accounts repositories.AccountRepository,
) *CatalogService {
	return &CatalogService{
		tags:        tags,
		statics:     statics,
		preferences: preferences,
		feedback:    feedback,
		saves:       saves,
		accounts:    accounts,
	}
}

// label is the capitalized kind used in messages.
func label(kind policy.Kind) string {
	k := string(kind)
	return strings.ToUpper(k[:1]) + k[1:]
}

func catalogList[T any](ctx context.Context, caller *policy.Caller, kind policy.Kind, repo repositories.CatalogRepository[T], page int) ([]T, error) {
	if err := policy.Can(caller, policy.ActionList, policy.Resource{Kind: kind}); err != nil {
		return nil, err
	}
	docs, err := repo.List(ctx, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list "+string(kind)+"s")
	}
	return docs, nil
}

func catalogGet[T any](ctx context.Context, caller *policy.Caller, kind policy.Kind, repo repositories.CatalogRepository[T], id primitive.ObjectID) (*T, error) {
	if err := policy.Can(caller, policy.ActionRead, policy.Resource{Kind: kind, ID: id}); err != nil {
		return nil, err
	}
	doc, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, label(kind)+" not found")
	}
	return doc, nil
}

func catalogCreate[T any](ctx context.Context, caller *policy.Caller, kind policy.Kind, repo repositories.CatalogRepository[T], doc *T) error {
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: kind}); err != nil {
		return err
	}
	err := repo.Create(ctx, doc)
	if errors.Is(err, repositories.ErrDuplicate) {
		return errs.Conflict(label(kind) + " already exists")
	}
	return storeErr(err, label(kind)+" not found")
}

// catalogReplace loads the document, lets set modify it and stores it again.
func catalogReplace[T any](ctx context.Context, caller *policy.Caller, kind policy.Kind, repo repositories.CatalogRepository[T], id primitive.ObjectID, set func(*T)) (*T, error) {
	if err := policy.Can(caller, policy.ActionUpdate, policy.Resource{Kind: kind, ID: id}); err != nil {
		return nil, err
	}
	notFound := label(kind) + " not found"
	doc, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, notFound)
	}
	set(doc)
	err = repo.Replace(ctx, id, doc)
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, errs.Conflict(label(kind) + " already exists")
	}
	if err != nil {
		return nil, storeErr(err, notFound)
	}
	return doc, nil
}

func catalogDelete[T any](ctx context.Context, caller *policy.Caller, kind policy.Kind, repo repositories.CatalogRepository[T], id primitive.ObjectID) error {
	if err := policy.Can(caller, policy.ActionDelete, policy.Resource{Kind: kind, ID: id}); err != nil {
		return err
	}
	return storeErr(repo.Delete(ctx, id), label(kind)+" not found")
}

// Tags

func (s *CatalogService) ListTags(ctx context.Context, caller *policy.Caller) ([]models.Tag, error) {
	return catalogList(ctx, caller, policy.KindTag, s.tags, 0)
}

func (s *CatalogService) GetTag(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (*models.Tag, error) {
	return catalogGet(ctx, caller, policy.KindTag, s.tags, id)
}

func (s *CatalogService) CreateTag(ctx context.Context, caller *policy.Caller, req models.TagRequest) (*models.Tag, error) {
	tag := &models.Tag{ID: primitive.NewObjectID(), Name: strings.TrimSpace(req.Name), CreatedAt: time.Now()}
	if err := catalogCreate(ctx, caller, policy.KindTag, s.tags, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *CatalogService) UpdateTag(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, req models.TagRequest) (*models.Tag, error) {
	return catalogReplace(ctx, caller, policy.KindTag, s.tags, id, func(t *models.Tag) {
		t.Name = strings.TrimSpace(req.Name)
	})
}

func (s *CatalogService) DeleteTag(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) error {
	return catalogDelete(ctx, caller, policy.KindTag, s.tags, id)
}

// Statics

func (s *CatalogService) ListStatics(ctx context.Context, caller *policy.Caller) ([]models.Static, error) {
	return catalogList(ctx, caller, policy.KindStatic, s.statics, 0)
}

func (s *CatalogService) GetStatic(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (*models.Static, error) {
	return catalogGet(ctx, caller, policy.KindStatic, s.statics, id)
}

func (s *CatalogService) CreateStatic(ctx context.Context, caller *policy.Caller, req models.StaticRequest) (*models.Static, error) {
	static := &models.Static{
		ID:        primitive.NewObjectID(),
		Slug:      strings.ToLower(req.Slug),
		Title:     strings.TrimSpace(req.Title),
		Text:      req.Text,
		CreatedAt: time.Now(),
	}
	if err := catalogCreate(ctx, caller, policy.KindStatic, s.statics, static); err != nil {
		return nil, err
	}
	return static, nil
}

func (s *CatalogService) UpdateStatic(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, req models.StaticRequest) (*models.Static, error) {
	return catalogReplace(ctx, caller, policy.KindStatic, s.statics, id, func(st *models.Static) {
		st.Slug = strings.ToLower(req.Slug)
		st.Title = strings.TrimSpace(req.Title)
		st.Text = req.Text
	})
}

func (s *CatalogService) DeleteStatic(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) error {
	return catalogDelete(ctx, caller, policy.KindStatic, s.statics, id)
}

// Preferences

func (s *CatalogService) ListPreferences(ctx context.Context, caller *policy.Caller) ([]models.Preference, error) {
	return catalogList(ctx, caller, policy.KindPreference, s.preferences, 0)
}

func (s *CatalogService) GetPreference(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (*models.Preference, error) {
	return catalogGet(ctx, caller, policy.KindPreference, s.preferences, id)
}

func (s *CatalogService) CreatePreference(ctx context.Context, caller *policy.Caller, req models.PreferenceRequest) (*models.Preference, error) {
	pref := &models.Preference{ID: primitive.NewObjectID(), Name: strings.TrimSpace(req.Name), CreatedAt: time.Now()}
	if err := catalogCreate(ctx, caller, policy.KindPreference, s.preferences, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

func (s *CatalogService) UpdatePreference(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, req models.PreferenceRequest) (*models.Preference, error) {
	return catalogReplace(ctx, caller, policy.KindPreference, s.preferences, id, func(p *models.Preference) {
		p.Name = strings.TrimSpace(req.Name)
	})
}

func (s *CatalogService) DeletePreference(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) error {
	return catalogDelete(ctx, caller, policy.KindPreference, s.preferences, id)
}

// Feedback

func (s *CatalogService) ListFeedback(ctx context.Context, caller *policy.Caller, page int) ([]models.Feedback, error) {
	return catalogList(ctx, caller, policy.KindFeedback, s.feedback, page)
}

func (s *CatalogService) GetFeedback(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (*models.Feedback, error) {
	return catalogGet(ctx, caller, policy.KindFeedback, s.feedback, id)
}

// SendFeedback stores feedback from any signed-in account.
func (s *CatalogService) SendFeedback(ctx context.Context, caller *policy.Caller, req models.FeedbackRequest) (*models.Feedback, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	feedback := &models.Feedback{
		ID:        primitive.NewObjectID(),
		User:      caller.ID,
		Text:      strings.TrimSpace(req.Text),
		CreatedAt: time.Now(),
	}
	if err := catalogCreate(ctx, caller, policy.KindFeedback, s.feedback, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *CatalogService) DeleteFeedback(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) error {
	return catalogDelete(ctx, caller, policy.KindFeedback, s.feedback, id)
}

// Saves

// ListSaves lists the businesses caller saved; an empty type lists all.
func (s *CatalogService) ListSaves(ctx context.Context, caller *policy.Caller, t models.SaveType, page int) ([]models.Save, error) {
	if err := policy.Can(caller, policy.ActionList, policy.Resource{Kind: policy.KindSave}); err != nil {
		return nil, err
	}
	saves, err := s.saves.ListByUser(ctx, caller.ID, t, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list saves")
	}
	return saves, nil
}

// Save bookmarks a business as gone, to go or favorite.
func (s *CatalogService) Save(ctx context.Context, caller *policy.Caller, req models.SaveRequest) (*models.Save, error) {
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: policy.KindSave}); err != nil {
		return nil, err
	}
	businessID, err := parseID(req.Business, "business")
	if err != nil {
		return nil, err
	}
	business, err := s.accounts.GetByID(ctx, businessID)
	if err != nil {
		return nil, storeErr(err, "Business not found")
	}
	if business.Role != models.RoleBusiness {
		return nil, errs.NotFound("Business not found")
	}

	save := &models.Save{User: caller.ID, Business: businessID, Type: req.Type}
	err = s.saves.Create(ctx, save)
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, ErrAlreadySaved
	}
	if err != nil {
		return nil, storeErr(err, "Business not found")
	}
	return save, nil
}

func (s *CatalogService) Unsave(ctx context.Context, caller *policy.Caller, req models.SaveRequest) error {
	if err := policy.Can(caller, policy.ActionDelete, policy.Resource{Kind: policy.KindSave}); err != nil {
		return err
	}
	businessID, err := parseID(req.Business, "business")
	if err != nil {
		return err
	}
	return storeErr(s.saves.Delete(ctx, caller.ID, businessID, req.Type), "Save not found")
}
