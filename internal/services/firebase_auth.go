package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// FirebaseProvider creates accounts with the Admin SDK and verifies
// passwords through the Identity Toolkit REST API.
type FirebaseProvider struct {
	Admin   *auth.Client
	Toolkit *identitytoolkit.Service
}

func NewFirebaseProvider(ctx context.Context, projectID, credentialsFile, apiKey string) (*FirebaseProvider, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	admin, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identity toolkit: %w", err)
	}
	return &FirebaseProvider{Admin: admin, Toolkit: toolkit}, nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	u, err := p.Admin.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailInUse
		}
		return "", err
	}
	return u.UID, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	resp, err := p.Toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return "", classifySignIn(err)
	}
	return resp.LocalId, nil
}

// classifySignIn folds the identity toolkit's credential codes into
// ErrBadCreds.
func classifySignIn(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusBadRequest {
		return err
	}
	msg := gerr.Message
	for _, it := range gerr.Errors {
		msg += " " + it.Message
	}
	for _, code := range []string{"EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL"} {
		if strings.Contains(msg, code) {
			return fmt.Errorf("%w: %s", ErrBadCreds, code)
		}
	}
	return err
}
