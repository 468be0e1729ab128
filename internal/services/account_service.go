package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/goer-app/goer/backend/internal/auth"
	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/mailer"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
	"github.com/goer-app/goer/backend/internal/storage"
	"github.com/goer-app/goer/backend/pkg/logger"
)

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// AuthResult is returned by every sign-in flow.
type AuthResult struct {
	Account *models.Account `json:"account"`
	Token   string          `json:"token"`
}

// AccountService manages accounts, credentials and device sessions.
type AccountService struct {
	accounts repositories.AccountRepository
	sessions repositories.SessionRepository
	follows  repositories.FollowRepository
	notifier *Notifier
	issuer   *auth.Issuer
	mailer   mailer.Mailer
	storage  storage.Storage
	firebase IDTokenVerifier
}

// NewAccountService creates an AccountService. A nil verifier disables
// Firebase sign-in.
func NewAccountService(
	accounts repositories.AccountRepository,
	sessions repositories.SessionRepository,
	follows repositories.FollowRepository,
	notifier *Notifier,
	issuer *auth.Issuer,
	m mailer.Mailer,
	store storage.Storage,
	verifier IDTokenVerifier,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		sessions: sessions,
		follows:  follows,
		notifier: notifier,
		issuer:   issuer,
		mailer:   m,
		storage:  store,
		firebase: verifier,
	}
}

// randomDigits returns a random decimal string of n digits without a leading zero.
func randomDigits(n int) (string, error) {
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9))
	v, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return v.Add(v, low).String(), nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.Upstream(err, "Failed to hash password")
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// send delivers an email and logs failures. Account flows never fail because
// of the mail server.
func (s *AccountService) send(ctx context.Context, email mailer.Email) {
	if err := s.mailer.Send(ctx, email); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("to", email.To).Str("subject", email.Subject).Msg("failed to send email")
	}
}

// newAccount builds an account from a sign-up request, checking the fields
// each role requires.
func newAccount(req models.SignUpRequest) (*models.Account, error) {
	account := &models.Account{
		ID:          primitive.NewObjectID(),
		Role:        req.Role,
		Email:       normalizeEmail(req.Email),
		Gender:      req.Gender,
		Phone:       strings.TrimSpace(req.Phone),
		Description: strings.TrimSpace(req.Description),
		Private:     req.Private,
		Language:    req.Language,
		Facebook:    req.Facebook,
		Instagram:   req.Instagram,
	}
	if account.Role == "" {
		account.Role = models.RoleUser
	}
	if account.Language == "" {
		account.Language = models.LanguageEnglish
	}

	switch account.Role {
	case models.RoleBusiness:
		account.Name = models.Name{First: strings.TrimSpace(req.Name)}
		if account.Name.First == "" {
			return nil, errs.Validation("Name is required")
		}
		if account.Phone == "" {
			return nil, errs.Validation("Phone is required")
		}
		if req.Latitude == nil || req.Longitude == nil {
			return nil, errs.Validation("Location is required")
		}
		account.Location = &models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	case models.RoleUser:
		account.Name = models.Name{First: strings.TrimSpace(req.FirstName), Last: strings.TrimSpace(req.LastName)}
		if account.Name.First == "" {
			return nil, errs.Validation("First name is required")
		}
		if account.Name.Last == "" {
			return nil, errs.Validation("Last name is required")
		}
	default:
		account.Name = models.Name{First: strings.TrimSpace(req.Name)}
	}

	if req.Birthdate != "" {
		t, err := time.Parse("2006-01-02", req.Birthdate)
		if err != nil {
			return nil, errs.Validation("Invalid birthdate")
		}
		account.Birthdate = &t
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	account.Password = hashed
	return account, nil
}

// create stores account with an optional picture. The picture is removed
// again when the insert fails.
func (s *AccountService) create(ctx context.Context, account *models.Account, picture *Upload) error {
	if picture != nil {
		url, err := storeUpload(ctx, s.storage, "accounts/"+account.ID.Hex(), *picture)
		if err != nil {
			return err
		}
		account.Picture = url
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		dropUploads(ctx, s.storage, []string{account.Picture})
		if errors.Is(err, repositories.ErrDuplicate) {
			return ErrEmailTaken
		}
		return storeErr(err, "Account not found")
	}
	return nil
}

// SignUp registers a user or business account and emails a confirmation
// code. Business accounts wait for an admin approval.
func (s *AccountService) SignUp(ctx context.Context, req models.SignUpRequest, picture *Upload) (*models.Account, error) {
	if req.Role != "" && req.Role != models.RoleUser && req.Role != models.RoleBusiness {
		return nil, errs.Validation("Role must be user or business")
	}
	account, err := newAccount(req)
	if err != nil {
		return nil, err
	}
	code, err := randomDigits(6)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to generate confirmation code")
	}
	account.Confirmation = code
	account.Approved = account.Role != models.RoleBusiness

	if err := s.create(ctx, account, picture); err != nil {
		return nil, err
	}
	s.send(ctx, mailer.Confirmation(account.Email, account.Name.Full(), code))

	logger.Ctx(ctx).Info().Str("account_id", account.ID.Hex()).Str("role", string(account.Role)).Msg("account signed up")
	return account, nil
}

// ResendConfirmation issues a new confirmation code.
func (s *AccountService) ResendConfirmation(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return storeErr(err, "Account not found")
	}
	if account.Confirmed {
		return errs.Conflict("Account already confirmed")
	}
	code, err := randomDigits(6)
	if err != nil {
		return errs.Upstream(err, "Failed to generate confirmation code")
	}
	account.Confirmation = code
	if err := s.accounts.Update(ctx, account); err != nil {
		return storeErr(err, "Account not found")
	}
	s.send(ctx, mailer.Confirmation(account.Email, account.Name.Full(), code))
	return nil
}

// Confirm marks the account confirmed when code matches.
func (s *AccountService) Confirm(ctx context.Context, req models.ConfirmRequest) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, storeErr(err, "Account not found")
	}
	if account.Confirmed {
		return nil, errs.Conflict("Account already confirmed")
	}
	if account.Confirmation == "" || account.Confirmation != req.Code {
		return nil, errs.Validation("Invalid confirmation code")
	}
	account.Confirmed = true
	account.Confirmation = ""
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, storeErr(err, "Account not found")
	}
	return account, nil
}

// openSession issues a token and stores it for the device. Signing in again
// from the same device replaces its token.
func (s *AccountService) openSession(ctx context.Context, account *models.Account, registrationToken string) (*AuthResult, error) {
	token, err := s.issuer.Issue(account)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to issue token")
	}
	session := &models.Session{
		AccountID:         account.ID.Hex(),
		Token:             token,
		RegistrationToken: registrationToken,
	}
	if err := s.sessions.Upsert(ctx, session); err != nil {
		return nil, errs.Upstream(err, "Failed to store session")
	}
	return &AuthResult{Account: account, Token: token}, nil
}

// SignIn checks the password and opens a session for the device.
func (s *AccountService) SignIn(ctx context.Context, req models.SignInRequest) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, storeErr(err, "Account not found")
	}
	if account.Password == "" || bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidLogin
	}
	if !account.Confirmed {
		return nil, ErrNotConfirmed
	}
	if !account.Approved {
		return nil, ErrNotApproved
	}
	return s.openSession(ctx, account, req.RegistrationToken)
}

// FirebaseSignIn exchanges a Firebase ID token for a session. The account is
// looked up by Firebase UID, then by email, and created when neither matches.
func (s *AccountService) FirebaseSignIn(ctx context.Context, req models.FirebaseSignInRequest) (*AuthResult, error) {
	if s.firebase == nil {
		return nil, errs.Forbidden("Firebase sign-in is not enabled")
	}
	token, err := s.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		logger.Ctx(ctx).Debug().Err(err).Msg("firebase token rejected")
		return nil, errs.Unauthorized("Invalid Firebase ID token")
	}

	account, err := s.accounts.GetByFirebaseUID(ctx, token.UID)
	if errors.Is(err, repositories.ErrNotFound) {
		account, err = s.linkFirebase(ctx, token)
	}
	if err != nil {
		return nil, storeErr(err, "Account not found")
	}
	if !account.Approved {
		return nil, ErrNotApproved
	}
	return s.openSession(ctx, account, req.RegistrationToken)
}

func (s *AccountService) linkFirebase(ctx context.Context, token *fbauth.Token) (*models.Account, error) {
	email, _ := token.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, errs.Validation("Firebase account has no email")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		account.FirebaseUID = token.UID
		account.Confirmed = true
		account.Confirmation = ""
		if err := s.accounts.Update(ctx, account); err != nil {
			return nil, err
		}
		return account, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	account = &models.Account{
		ID:          primitive.NewObjectID(),
		Role:        models.RoleUser,
		Email:       email,
		FirebaseUID: token.UID,
		Language:    models.LanguageEnglish,
		Confirmed:   true,
		Approved:    true,
	}
	if name, ok := token.Claims["name"].(string); ok {
		first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
		account.Name = models.Name{First: first, Last: strings.TrimSpace(last)}
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		account.Picture = picture
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("account_id", account.ID.Hex()).Msg("account created from firebase sign-in")
	return account, nil
}

// SignOut removes the session holding token.
func (s *AccountService) SignOut(ctx context.Context, token string) error {
	err := s.sessions.DeleteByToken(ctx, token)
	if errors.Is(err, repositories.ErrNotFound) {
		return errs.NotFound("You are already signed out")
	}
	if err != nil {
		return errs.Upstream(err, "Failed to remove session")
	}
	return nil
}

// Authenticate resolves a bearer token to its account. The token must verify
// and still belong to a live session.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	session, err := s.sessions.FindByToken(ctx, token)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, errs.Upstream(err, "Failed to load session")
	}
	if session.AccountID != claims.AccountID {
		return nil, ErrInvalidSession
	}
	id, err := primitive.ObjectIDFromHex(claims.AccountID)
	if err != nil {
		return nil, ErrInvalidSession
	}
	account, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, errs.Upstream(err, "Failed to load account")
	}
	return account, nil
}

// ResetPassword replaces the password with a random one and emails it.
func (s *AccountService) ResetPassword(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return storeErr(err, "Account not found")
	}
	password, err := randomDigits(8)
	if err != nil {
		return errs.Upstream(err, "Failed to generate password")
	}
	if account.Password, err = hashPassword(password); err != nil {
		return err
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		return storeErr(err, "Account not found")
	}
	s.send(ctx, mailer.PasswordReset(account.Email, account.Name.Full(), password))
	return nil
}

// ChangePassword sets a new password after checking the old one.
func (s *AccountService) ChangePassword(ctx context.Context, caller *policy.Caller, req models.ChangePasswordRequest) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	account, err := s.accounts.GetByID(ctx, caller.ID)
	if err != nil {
		return storeErr(err, "Account not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.OldPassword)) != nil {
		return errs.Validation("Old password is incorrect")
	}
	if account.Password, err = hashPassword(req.NewPassword); err != nil {
		return err
	}
	return storeErr(s.accounts.Update(ctx, account), "Account not found")
}

// Profile returns what caller may see of the account: the full record for
// itself, admins and public accounts, otherwise the redacted projection.
func (s *AccountService) Profile(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (any, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Account not found")
	}
	if policy.IsAdmin(caller) {
		return account, nil
	}
	return policy.ProjectAccount(caller, account), nil
}

// UpdateProfile applies the non-nil fields of req. Only admins may change
// the approved flag.
func (s *AccountService) UpdateProfile(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, req models.UpdateProfileRequest, picture *Upload) (*models.Account, error) {
	if err := policy.Can(caller, policy.ActionUpdate, policy.Resource{Kind: policy.KindAccount, ID: id}); err != nil {
		return nil, err
	}
	if req.Approved != nil && !policy.IsAdmin(caller) {
		return nil, errs.Forbidden("Only admins may approve accounts")
	}
	// Own passwords change through ChangePassword, which checks the old one.
	if req.Password != nil && (!policy.IsAdmin(caller) || caller.ID == id) {
		return nil, ErrPasswordChange
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Account not found")
	}
	if err := applyProfile(account, req); err != nil {
		return nil, err
	}
	if req.Password != nil {
		if account.Password, err = hashPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	previous := account.Picture
	if picture != nil {
		url, err := storeUpload(ctx, s.storage, "accounts/"+account.ID.Hex(), *picture)
		if err != nil {
			return nil, err
		}
		account.Picture = url
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		if picture != nil {
			dropUploads(ctx, s.storage, []string{account.Picture})
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr(err, "Account not found")
	}
	if picture != nil {
		dropUploads(ctx, s.storage, []string{previous})
	}
	return account, nil
}

func applyProfile(account *models.Account, req models.UpdateProfileRequest) error {
	if req.Email != nil {
		account.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		account.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Description != nil {
		account.Description = strings.TrimSpace(*req.Description)
	}
	if req.Private != nil {
		account.Private = *req.Private
	}
	if req.Language != nil {
		account.Language = *req.Language
	}
	if req.Approved != nil {
		account.Approved = *req.Approved
	}

	switch account.Role {
	case models.RoleBusiness:
		if req.Name != nil {
			account.Name.First = strings.TrimSpace(*req.Name)
		}
		if (req.Latitude == nil) != (req.Longitude == nil) {
			return errs.Validation("Latitude and longitude must be given together")
		}
		if req.Latitude != nil {
			account.Location = &models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
		}
		if req.Tags != nil {
			tags, err := models.ParseIDs(req.Tags)
			if err != nil {
				return errs.Validation("Invalid tag ID")
			}
			account.Tags = tags
		}
	case models.RoleUser:
		if req.FirstName != nil {
			account.Name.First = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			account.Name.Last = strings.TrimSpace(*req.LastName)
		}
		if req.Gender != nil {
			account.Gender = *req.Gender
		}
		if req.Birthdate != nil {
			t, err := time.Parse("2006-01-02", *req.Birthdate)
			if err != nil {
				return errs.Validation("Invalid birthdate")
			}
			account.Birthdate = &t
		}
		if req.Facebook != nil {
			account.Facebook = *req.Facebook
		}
		if req.Instagram != nil {
			account.Instagram = *req.Instagram
		}
		if req.Preferences != nil {
			prefs, err := models.ParseIDs(req.Preferences)
			if err != nil {
				return errs.Validation("Invalid preference ID")
			}
			account.Preferences = prefs
		}
	default:
		if req.Name != nil {
			account.Name.First = strings.TrimSpace(*req.Name)
		}
	}
	if account.Name.First == "" {
		return errs.Validation("Name is required")
	}
	return nil
}

// Search finds confirmed users and businesses by name.
func (s *AccountService) Search(ctx context.Context, caller *policy.Caller, query string, role models.Role, page int) ([]models.AccountCompact, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if role != "" && role != models.RoleUser && role != models.RoleBusiness {
		return nil, errs.Validation("Role must be user or business")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.AccountCompact{}, nil
	}
	accounts, err := s.accounts.Search(ctx, query, role, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to search accounts")
	}
	result := make([]models.AccountCompact, 0, len(accounts))
	for i := range accounts {
		result = append(result, accounts[i].ToCompact())
	}
	return result, nil
}

// ContactBusiness emails a business on behalf of caller. Unlike account
// emails, a delivery failure is reported.
func (s *AccountService) ContactBusiness(ctx context.Context, caller *policy.Caller, req models.ContactBusinessRequest) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	businessID, err := parseID(req.BusinessID, "business")
	if err != nil {
		return err
	}
	business, err := s.accounts.GetByID(ctx, businessID)
	if err != nil {
		return storeErr(err, "Business not found")
	}
	if business.Role != models.RoleBusiness {
		return errs.NotFound("Business not found")
	}
	sender, err := s.accounts.GetByID(ctx, caller.ID)
	if err != nil {
		return storeErr(err, "Account not found")
	}
	email := mailer.Contact(business.Email, sender.Email, sender.Name.Full(), req.Subject, req.Text)
	if err := s.mailer.Send(ctx, email); err != nil {
		return errs.Upstream(err, "Failed to send email")
	}
	return nil
}

// ListByRole lists accounts of one role for the admin panel.
func (s *AccountService) ListByRole(ctx context.Context, caller *policy.Caller, role models.Role, page int) ([]models.Account, error) {
	if err := policy.Can(caller, policy.ActionList, policy.Resource{Kind: policy.KindAccount}); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, errs.Validation(fmt.Sprintf("Unknown role %q", role))
	}
	accounts, err := s.accounts.ListByRole(ctx, role, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list accounts")
	}
	return accounts, nil
}

// Create lets an admin add an account of any role. It is confirmed and
// approved immediately.
func (s *AccountService) Create(ctx context.Context, caller *policy.Caller, req models.SignUpRequest, picture *Upload) (*models.Account, error) {
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: policy.KindAccount}); err != nil {
		return nil, err
	}
	if req.Role == "" {
		return nil, errs.Validation("Role is required")
	}
	account, err := newAccount(req)
	if err != nil {
		return nil, err
	}
	account.Confirmed = true
	account.Approved = true
	if err := s.create(ctx, account, picture); err != nil {
		return nil, err
	}
	return account, nil
}

// inRole loads account id and hides it unless it has role, since the admin
// panel addresses accounts per role.
func (s *AccountService) inRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Account not found")
	}
	if account.Role != role {
		return nil, errs.NotFound("Account not found")
	}
	return account, nil
}

// GetInRole returns account id when it has role.
func (s *AccountService) GetInRole(ctx context.Context, caller *policy.Caller, role models.Role, id primitive.ObjectID) (*models.Account, error) {
	if err := policy.Can(caller, policy.ActionRead, policy.Resource{Kind: policy.KindAccount, ID: id}); err != nil {
		return nil, err
	}
	return s.inRole(ctx, id, role)
}

// UpdateInRole applies req to account id when it has role.
func (s *AccountService) UpdateInRole(ctx context.Context, caller *policy.Caller, role models.Role, id primitive.ObjectID, req models.UpdateProfileRequest, picture *Upload) (*models.Account, error) {
	if err := policy.Can(caller, policy.ActionUpdate, policy.Resource{Kind: policy.KindAccount, ID: id}); err != nil {
		return nil, err
	}
	if _, err := s.inRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.UpdateProfile(ctx, caller, id, req, picture)
}

// DeleteInRole deletes account id when it has role.
func (s *AccountService) DeleteInRole(ctx context.Context, caller *policy.Caller, role models.Role, id primitive.ObjectID) error {
	if err := policy.Can(caller, policy.ActionDelete, policy.Resource{Kind: policy.KindAccount, ID: id}); err != nil {
		return err
	}
	if _, err := s.inRole(ctx, id, role); err != nil {
		return err
	}
	return s.Delete(ctx, caller, id)
}

// Approve marks a business account approved.
func (s *AccountService) Approve(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (*models.Account, error) {
	if !policy.IsAdmin(caller) {
		return nil, errs.Forbidden("Only admins may approve accounts")
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Business not found")
	}
	if account.Role != models.RoleBusiness {
		return nil, errs.NotFound("Business not found")
	}
	if account.Approved {
		return nil, errs.Conflict("Account already approved")
	}
	account.Approved = true
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, storeErr(err, "Account not found")
	}
	return account, nil
}

// Delete removes an account and then, best effort, its picture, sessions,
// follows and notifications. Admins cannot delete themselves.
func (s *AccountService) Delete(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) error {
	if err := policy.Can(caller, policy.ActionDelete, policy.Resource{Kind: policy.KindAccount, ID: id}); err != nil {
		return err
	}
	account, err := s.accounts.Delete(ctx, id)
	if err != nil {
		return storeErr(err, "Account not found")
	}

	l := logger.Ctx(ctx).With().Str("account_id", id.Hex()).Logger()
	dropUploads(ctx, s.storage, []string{account.Picture})
	if err := s.sessions.DeleteByAccount(ctx, id.Hex()); err != nil {
		l.Warn().Err(err).Msg("failed to delete sessions")
	}
	if err := s.follows.DeleteByAccount(ctx, id); err != nil {
		l.Warn().Err(err).Msg("failed to delete follows")
	}
	if err := s.notifier.Forget(ctx, id); err != nil {
		l.Warn().Err(err).Msg("failed to delete notifications")
	}
	l.Info().Msg("account deleted")
	return nil
}
