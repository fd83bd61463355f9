// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/l3montree-dev/repoinvite/client"
	"github.com/l3montree-dev/repoinvite/common"
	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

type baseConfig struct {
	APIURL        string `json:"apiUrl" mapstructure:"apiUrl"`
	EnterpriseURL string `json:"enterpriseUrl" mapstructure:"enterpriseUrl"`

	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Token    string `json:"token" mapstructure:"token"`

	AppID             int64  `json:"appId" mapstructure:"appId" validate:"gte=0"`
	AppInstallationID int64  `json:"appInstallationId" mapstructure:"appInstallationId" validate:"gte=0"`
	AppPrivateKeyPath string `json:"appPrivateKey" mapstructure:"appPrivateKey"`

	Timeout        time.Duration `json:"timeout" mapstructure:"timeout" validate:"gte=0"`
	ConnectTimeout time.Duration `json:"connectTimeout" mapstructure:"connectTimeout" validate:"gte=0"`
	RateLimit      float64       `json:"rateLimit" mapstructure:"rateLimit" validate:"gte=0"`
	CacheSize      int           `json:"cacheSize" mapstructure:"cacheSize" validate:"gte=0"`
	CacheTTL       time.Duration `json:"cacheTtl" mapstructure:"cacheTtl" validate:"required_with=CacheSize,gte=0"`

	Trace        bool   `json:"trace" mapstructure:"trace"`
	OTLPEndpoint string `json:"otlpEndpoint" mapstructure:"otlpEndpoint" validate:"omitempty,url"`
	SentryDSN    string `json:"sentryDsn" mapstructure:"sentryDsn"`

	Output string `json:"output" mapstructure:"output" validate:"omitempty,oneof=table json yaml"`
}

// ScenarioConfig holds the two accounts of the lifecycle scenario. The owner invites the
// invitee to the repository, which is named by its own key.
type ScenarioConfig struct {
	InviteeUser     string `json:"inviteeUser" mapstructure:"inviteeUser"`
	InviteePassword string `json:"inviteePassword" mapstructure:"inviteePassword"`
	OwnerUser       string `json:"ownerUser" mapstructure:"ownerUser"`
	OwnerPassword   string `json:"ownerPassword" mapstructure:"ownerPassword"`
	Repository      string `json:"repository" mapstructure:"repository"`
}

var RuntimeBaseConfig baseConfig
var RuntimeScenarioConfig ScenarioConfig

// scenario keys and the environment variables of the live test they are read from
var scenarioEnv = map[string]string{
	"scenario.inviteeUser":     "GITHUB_TEST_USER",
	"scenario.inviteePassword": "GITHUB_TEST_PASSWORD",
	"scenario.ownerUser":       "GITHUB_TEST_COLLAB_USER",
	"scenario.ownerPassword":   "GITHUB_TEST_COLLAB_PASSWORD",
	"scenario.repository":      "GITHUB_TEST_COLLAB_REPOSITORY",
}

// BindScenarioEnv lets the scenario keys fall back to the variables of the live test.
func BindScenarioEnv() error {
	for key, env := range scenarioEnv {
		if err := viper.BindEnv(key, "REPOINVITE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return err
		}
	}
	return nil
}

func ParseBaseConfig() error {
	RuntimeBaseConfig = baseConfig{}
	if err := viper.Unmarshal(&RuntimeBaseConfig); err != nil {
		return errors.Wrap(err, "could not parse config")
	}

	if RuntimeBaseConfig.APIURL != "" {
		RuntimeBaseConfig.APIURL = sanitizeAPIURL(RuntimeBaseConfig.APIURL)
	}

	return shared.ValidateStruct(RuntimeBaseConfig)
}

// ParseScenarioConfig reads the keys one by one, env bindings of nested keys are not
// visible to viper.UnmarshalKey.
func ParseScenarioConfig() {
	RuntimeScenarioConfig = ScenarioConfig{
		InviteeUser:     viper.GetString("scenario.inviteeUser"),
		InviteePassword: viper.GetString("scenario.inviteePassword"),
		OwnerUser:       viper.GetString("scenario.ownerUser"),
		OwnerPassword:   viper.GetString("scenario.ownerPassword"),
		Repository:      viper.GetString("scenario.repository"),
	}
}

// Missing returns the keys which are not configured.
func (s ScenarioConfig) Missing() []string {
	missing := make([]string, 0)
	for _, kv := range []struct{ key, value string }{
		{"scenario.inviteeUser", s.InviteeUser},
		{"scenario.inviteePassword", s.InviteePassword},
		{"scenario.ownerUser", s.OwnerUser},
		{"scenario.ownerPassword", s.OwnerPassword},
		{"scenario.repository", s.Repository},
	} {
		if kv.value == "" {
			missing = append(missing, kv.key+" ("+scenarioEnv[kv.key]+")")
		}
	}
	return missing
}

// RepositoryID resolves the repository. A plain name belongs to the owner account.
func (s ScenarioConfig) RepositoryID() (models.RepositoryID, error) {
	return models.ResolveRepositoryID(s.OwnerUser, s.Repository)
}

func sanitizeAPIURL(apiURL string) string {
	apiURL = strings.TrimSuffix(apiURL, "/")

	if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
		apiURL = "https://" + apiURL
	}

	return apiURL
}

var responseCache struct {
	sync.Mutex
	key   string
	cache *common.CacheTransport
}

// sharedResponseCache returns the one cache every client of this process uses. The
// scenario runs two accounts against the same api and an invitation created by the
// owner has to purge the listing of the invitee.
func (c baseConfig) sharedResponseCache() *common.CacheTransport {
	if c.CacheSize <= 0 || c.CacheTTL <= 0 {
		return nil
	}

	key := fmt.Sprintf("%s|%s|%d|%s", c.APIURL, c.EnterpriseURL, c.CacheSize, c.CacheTTL)
	responseCache.Lock()
	defer responseCache.Unlock()
	if responseCache.cache == nil || responseCache.key != key {
		responseCache.key = key
		responseCache.cache = common.NewCacheTransport(c.CacheSize, c.CacheTTL)
	}
	return responseCache.cache
}

func (c baseConfig) clientOptions() []client.Option {
	opts := []client.Option{
		client.WithBaseURL(c.APIURL),
		client.WithTimeouts(c.ConnectTimeout, c.Timeout),
		client.WithRateLimit(c.RateLimit, 1),
	}
	if cache := c.sharedResponseCache(); cache != nil {
		opts = append(opts, client.WithSharedCache(cache))
	}
	if c.EnterpriseURL != "" {
		opts = append(opts, client.WithEnterpriseURL(c.EnterpriseURL))
	}
	if c.Trace || c.OTLPEndpoint != "" {
		opts = append(opts, client.WithTracing())
	}
	return opts
}

// NewClient creates a client with the configured credential. The precedence is
// token, username and password, password from the keyring, github app installation
// and finally a token from the keyring. Without any credential the client stays
// anonymous.
func NewClient() (*client.Client, error) {
	c, err := client.New(RuntimeBaseConfig.clientOptions()...)
	if err != nil {
		return nil, err
	}

	cfg := RuntimeBaseConfig
	switch {
	case cfg.Token != "":
		err = c.SetOAuth2Token(cfg.Token)
	case cfg.Username != "" && cfg.Password != "":
		err = c.SetCredentials(cfg.Username, cfg.Password)
	case cfg.Username != "":
		secret, keyringErr := GetSecretFromKeyring(c.BaseURL(), cfg.Username)
		if keyringErr != nil {
			return nil, errors.Wrapf(keyringErr, "no password given and none stored for %s, use the login command", cfg.Username)
		}
		err = c.SetCredentials(cfg.Username, secret)
	case cfg.AppID != 0:
		key, readErr := os.ReadFile(cfg.AppPrivateKeyPath)
		if readErr != nil {
			return nil, errors.Wrap(readErr, "could not read app private key")
		}
		err = c.SetAppInstallation(cfg.AppID, cfg.AppInstallationID, key)
	default:
		if token, keyringErr := GetSecretFromKeyring(c.BaseURL(), TokenKeyringUser); keyringErr == nil {
			slog.Debug("using token from keyring")
			err = c.SetOAuth2Token(token)
			break
		}
		slog.Debug("no credentials configured, using an anonymous client")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewBasicAuthClient creates a client for one of the scenario accounts.
func NewBasicAuthClient(username, password string) (*client.Client, error) {
	c, err := client.New(RuntimeBaseConfig.clientOptions()...)
	if err != nil {
		return nil, err
	}
	if err := c.SetCredentials(username, password); err != nil {
		return nil, err
	}
	return c, nil
}

// TokenKeyringUser is the keyring entry of a token stored by the login command.
const TokenKeyringUser = "token"

func keyringService(apiURL string) string {
	host := apiURL
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return "repoinvite/" + host
}

func StoreSecretInKeyring(apiURL, username, secret string) error {
	return keyring.Set(keyringService(apiURL), username, secret)
}

func GetSecretFromKeyring(apiURL, username string) (string, error) {
	return keyring.Get(keyringService(apiURL), username)
}

func DeleteSecretFromKeyring(apiURL, username string) error {
	return keyring.Delete(keyringService(apiURL), username)
}
