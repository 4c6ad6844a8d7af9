package http

/**
 * @author: gagral.x@gmail.com
 * @file: http.go
 * @description: http server config
 */

type Http struct {
	Host            string
	Port            int
	AccessLog       bool
	ReadTimeout     int // 秒
	WriteTimeout    int // 秒
	IdleTimeout     int // 秒
	ShutdownTimeout int // 秒
	BodyLimit       int // MB
}

// Auth holds dashboard login settings for the admin API.
type Auth struct {
	Enabled      bool
	Username     string
	Password     string
	SecretKey    string
	AccessExpire int // 分钟
}

func (a *Auth) SetDefaults() {
	if a.AccessExpire <= 0 {
		a.AccessExpire = 24 * 60
	}
}

// SetDefaults fills zero values with sane server defaults.
func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 5001
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 60
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 60
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 120
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 30
	}
	if h.BodyLimit <= 0 {
		h.BodyLimit = 16
	}
}
