package config

// Rate limit configuration
type RateLimitConfig struct {
	Rate  int // Maximum requests per minute per client
	Burst int // Burst capacity
}

var DefaultRateLimitConfig = RateLimitConfig{
	Rate:  10000,
	Burst: 1500,
}
