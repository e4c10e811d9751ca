// Package config provides configuration loading and validation for the streaming ASR service.
// It handles YAML-based configuration with struct validation covering the WebSocket server,
// sliding-window stream parameters, ASR engine endpoint, and logging.
package config
