package speech

import (
	"strings"

	"github.com/samber/oops"

	speechmodel "github.com/zhouzirui/sakhi/backend/internal/model/speech"
)

// resolveCredentials 返回规范化后的 AppID 与 AccessToken，缺失时给出明确错误。
func resolveCredentials(cfg *speechmodel.SpeechConfig) (string, string, error) {
	if cfg == nil {
		return "", "", oops.In("speech").Errorf("volcengine speech config is not initialized")
	}

	appID := strings.TrimSpace(cfg.AppID)
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		token = strings.TrimSpace(cfg.APIKey)
	}

	if appID == "" || token == "" {
		return "", "", oops.In("speech").Errorf("volcengine speech config is missing AppID or AccessToken")
	}

	return appID, token, nil
}
