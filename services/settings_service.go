package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"PostGenius/models"
	"PostGenius/store"
	"PostGenius/utils"
)

// SettingsService persists the user's API credentials under the credentials
// key. Secrets are encrypted at rest when an encryption key is configured.
type SettingsService struct {
	kv            store.KeyValue
	encryptionKey string
	envGeminiKey  string
}

type storedSettings struct {
	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`
	FacebookAppID string `json:"facebook_app_id,omitempty"`
}

func NewSettingsService(kv store.KeyValue, encryptionKey, envGeminiKey string) *SettingsService {
	return &SettingsService{kv: kv, encryptionKey: encryptionKey, envGeminiKey: envGeminiKey}
}

func (s *SettingsService) Load(ctx context.Context) (models.Settings, error) {
	settings := models.Settings{}

	raw, ok, err := s.kv.Get(ctx, store.CredentialsKey)
	if err != nil {
		return settings, fmt.Errorf("read settings: %w", err)
	}
	if ok && strings.TrimSpace(raw) != "" {
		var stored storedSettings
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			utils.Warnf("[Settings] discarding corrupt credentials payload: %v", err)
		} else {
			settings.FacebookAppID = stored.FacebookAppID
			if stored.GeminiAPIKey != "" {
				key, err := utils.DecryptToken(s.encryptionKey, stored.GeminiAPIKey)
				if err != nil {
					utils.Warnf("[Settings] could not decrypt stored Gemini key: %v", err)
				} else {
					settings.GeminiAPIKey = key
				}
			}
		}
	}

	if settings.GeminiAPIKey == "" {
		settings.GeminiAPIKey = s.envGeminiKey
	}
	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, settings models.Settings) error {
	stored := storedSettings{
		FacebookAppID: strings.TrimSpace(settings.FacebookAppID),
	}
	if key := strings.TrimSpace(settings.GeminiAPIKey); key != "" {
		enc, err := utils.EncryptToken(s.encryptionKey, key)
		if err != nil {
			return fmt.Errorf("encrypt gemini key: %w", err)
		}
		stored.GeminiAPIKey = enc
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, store.CredentialsKey, string(raw)); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// GeminiAPIKey returns the effective key, or ErrMissingAPIKey.
func (s *SettingsService) GeminiAPIKey(ctx context.Context) (string, error) {
	settings, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	if settings.GeminiAPIKey == "" {
		return "", ErrMissingAPIKey
	}
	return settings.GeminiAPIKey, nil
}

// Masked hides all but the last four characters of each secret.
func Masked(settings models.Settings) models.Settings {
	settings.GeminiAPIKey = mask(settings.GeminiAPIKey)
	return settings
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
