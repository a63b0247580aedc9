package model

import (
	"log/slog"
	"net/http"

	"github.com/i474232898/wbgt-forecast/internal/forecast"
)

// Open selects the model for the process: the remote server when remoteURL
// is set, otherwise the artifact at path. It is called once at startup.
func Open(path, remoteURL string, client *http.Client, logger *slog.Logger) (forecast.Model, error) {
	if remoteURL != "" {
		logger.Info("using remote model server", "url", remoteURL)
		return NewRemoteModel(remoteURL, client), nil
	}

	m, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Info("model artifact loaded", "path", path, "name", m.Name(), "version", m.Version())
	return m, nil
}
