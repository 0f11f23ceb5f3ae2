package detector

import (
	"context"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/common"
	"github.com/streamsentry/streamsentry/pkg/config"
	"github.com/streamsentry/streamsentry/pkg/domain/moderation"
	"github.com/streamsentry/streamsentry/pkg/infra/httpx"
)

// settings is the strategy-specific portion of the moderation config,
// decoded from the free-form settings map.
type settings struct {
	ModelPath string `mapstructure:"model_path"`
	Endpoint  string `mapstructure:"endpoint"`
}

// Detector wires every classification strategy and selects the configured
// one as default. The on-demand check endpoint may still name any strategy
// per call via DetectWith.
type Detector struct {
	byMethod map[string]moderation.AsyncClassifier
	def      moderation.AsyncClassifier
	logger   *logrus.Logger
}

func NewDetector(cfg *config.ModerationConfig, client httpx.Client, logger *logrus.Logger) *Detector {
	var decoded settings
	if err := mapstructure.Decode(cfg.Settings, &decoded); err != nil {
		logger.WithError(err).Warn("Invalid moderation settings, ignoring")
	}

	keyword := NewKeywordClassifier()
	remote := NewRemoteClassifier(cfg.OpenAIKey, cfg.RequestTimeout, keyword, client, logger)
	if decoded.Endpoint != "" {
		remote.SetEndpoint(decoded.Endpoint)
	}

	byMethod := map[string]moderation.AsyncClassifier{
		common.StrategyKeyword: keyword,
		common.StrategyModel:   NewModelClassifier(decoded.ModelPath, keyword, logger),
		common.StrategyRemote:  remote,
	}

	def, ok := byMethod[cfg.Strategy]
	if !ok {
		if cfg.Strategy != "" {
			logger.WithField("strategy", cfg.Strategy).
				Warn("Unknown moderation strategy, using keyword classifier")
		}
		def = keyword
	}

	logger.WithField("strategy", cfg.Strategy).Info("Moderation detector initialized")

	return &Detector{
		byMethod: byMethod,
		def:      def,
		logger:   logger,
	}
}

func (d *Detector) Detect(ctx context.Context, text string) moderation.Result {
	return d.def.Detect(ctx, text)
}

func (d *Detector) DetectAsync(ctx context.Context, text string) <-chan moderation.Result {
	return d.def.DetectAsync(ctx, text)
}

// DetectWith classifies with a named strategy; unknown names use the default.
func (d *Detector) DetectWith(ctx context.Context, method, text string) moderation.Result {
	if classifier, ok := d.byMethod[method]; ok {
		return classifier.Detect(ctx, text)
	}
	return d.def.Detect(ctx, text)
}
