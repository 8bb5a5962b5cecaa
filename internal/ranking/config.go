package ranking

// DefaultEpsilon guards the cosine denominator against zero-norm vectors.
const DefaultEpsilon = 1e-12

// RankingConfig holds configuration for the similarity ranker.
type RankingConfig struct {
	Epsilon float64 `yaml:"epsilon"` // default: 1e-12
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		Epsilon: DefaultEpsilon,
	}
}

// ApplyDefaults fills unset or invalid values.
func (c *RankingConfig) ApplyDefaults() {
	if c.Epsilon <= 0 {
		c.Epsilon = DefaultEpsilon
	}
}
