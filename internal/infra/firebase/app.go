package firebase

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"sync"

	gjwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
	"go.uber.org/zap"

	domain "github.com/bryanwahyu/mealsense/internal/domain/diagnostics"
)

// DefaultAppName is the identity label of the single app this service builds.
const DefaultAppName = "[DEFAULT]"

const tokenURL = "https://oauth2.googleapis.com/token"

var defaultScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/firebase",
	"https://www.googleapis.com/auth/userinfo.email",
}

// App is a service-account backed credential. Tokens are fetched lazily.
type App struct {
	name          string
	projectID     string
	clientEmail   string
	storageBucket string
	key           *rsa.PrivateKey
	tokens        oauth2.TokenSource
}

func (a *App) Name() string { return a.name }
func (a *App) ProjectID() string { return a.projectID }
func (a *App) ClientEmail() string { return a.clientEmail }
func (a *App) StorageBucket() string { return a.storageBucket }
func (a *App) TokenSource() oauth2.TokenSource { return a.tokens }
func (a *App) PublicKey() *rsa.PublicKey { return &a.key.PublicKey }

// Initializer builds the App once and hands out the same instance afterwards.
type Initializer struct {
	snap domain.ConfigSnapshot
	log  *zap.Logger

	mu  sync.Mutex
	app *App
}

func NewInitializer(snap domain.ConfigSnapshot, log *zap.Logger) *Initializer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Initializer{snap: snap, log: log}
}

// Initialize returns the existing App or constructs one from the snapshot.
func (i *Initializer) Initialize(ctx context.Context) (domain.App, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.app != nil {
		return i.app, nil
	}
	app, err := build(i.snap)
	if err != nil {
		return nil, err
	}
	i.app = app
	i.log.Info("credential app initialized",
		zap.String("name", app.name),
		zap.String("project_id", app.projectID),
	)
	return app, nil
}

func build(snap domain.ConfigSnapshot) (*App, error) {
	projectID, _ := snap.ProjectID()
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project id is empty", domain.ErrMissingConfiguration)
	}
	email, _ := snap.ClientEmail()
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("client email %q is not a service account address", email)
	}

	pk, _, err := domain.ResolvePrivateKey(snap)
	if err != nil {
		return nil, err
	}
	key, err := gjwt.ParseRSAPrivateKeyFromPEM([]byte(pk.PEM))
	if err != nil {
		if errors.Is(err, gjwt.ErrKeyMustBePEMEncoded) {
			return nil, fmt.Errorf("%w: private key is not PEM encoded", domain.ErrMalformedCredential)
		}
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	cfg := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(pk.PEM),
		Scopes:     defaultScopes,
		TokenURL:   tokenURL,
	}
	bucket, _ := snap.StorageBucket()

	return &App{
		name:          DefaultAppName,
		projectID:     projectID,
		clientEmail:   email,
		storageBucket: bucket,
		key:           key,
		// Tokens outlive any single request.
		tokens: cfg.TokenSource(context.Background()),
	}, nil
}
