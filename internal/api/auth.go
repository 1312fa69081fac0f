package api

import (
	"context"

	"lingo-client/internal/models"
)

// AuthAPI talks to the credential endpoints. They never require a token, so
// every call goes through a public executor.
type AuthAPI struct {
	client func() *Client
}

func (g *Gateway) Auth() *AuthAPI {
	return &AuthAPI{client: func() *Client { return g.Public() }}
}

func (a *AuthAPI) SignUp(ctx context.Context, req models.SignUpRequest) (*models.Response, error) {
	var resp models.Response
	if err := a.client().Post(ctx, PathSignUp, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) SignIn(ctx context.Context, req models.SignInRequest) (*models.Token, error) {
	var token models.Token
	if err := a.client().Post(ctx, PathSignIn, req, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, &Error{Kind: KindDecode, Method: "POST", URL: PathSignIn, Message: "sign-in response carries no access token"}
	}
	return &token, nil
}

func (a *AuthAPI) VerifyOTP(ctx context.Context, req models.VerifyRequest) (*models.Token, error) {
	var token models.Token
	if err := a.client().Post(ctx, PathVerifyOTP, req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) (*models.Response, error) {
	var resp models.Response
	body := map[string]string{"email": email}
	if err := a.client().Post(ctx, PathForgotPassword, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.Response, error) {
	var resp models.Response
	if err := a.client().Post(ctx, PathResetPassword, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) ResendOTP(ctx context.Context, email string) (*models.Response, error) {
	var resp models.Response
	body := map[string]string{"email": email}
	if err := a.client().Post(ctx, PathResendOTP, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserAPI reads the signed-in learner's own data.
type UserAPI struct {
	client func() *Client
}

func (g *Gateway) User() *UserAPI {
	return &UserAPI{client: func() *Client { return g.Authenticated() }}
}

func (u *UserAPI) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := u.client().Get(ctx, PathUserProfile, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (u *UserAPI) Progress(ctx context.Context) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	if err := u.client().Get(ctx, PathUserProgress, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
