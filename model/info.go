package model

import "github.com/Borislavv/go-ctx-cache/config"

// Info describes the configuration of a cache and every context it has observed.
type Info struct {
	Config   config.Options         `json:"config"`
	Contexts map[string]ContextInfo `json:"contexts"`
}

type ContextInfo struct {
	Hits   int64 `json:"hits"`
	Cached bool  `json:"cached"`
}
