package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"resumediff/internal/config"
	"resumediff/internal/errors"
	"resumediff/internal/observability"

	"github.com/fsnotify/fsnotify"
)

const (
	criticalCertThreshold = 24 * time.Hour
	warningCertThreshold  = 7 * 24 * time.Hour
)

// CertReloader serves the server certificate and, for file based
// certificates, reloads it when the files change on disk.
type CertReloader struct {
	mu sync.RWMutex

	certFile string
	keyFile  string
	certPEM  string
	keyPEM   string

	cert   *tls.Certificate
	expiry time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer
	stopChan      chan struct{}
	running       bool

	reloadCount     int64
	reloadFailures  int64
	lastReloadTime  time.Time
	lastReloadError string

	observability *observability.ObservabilityManager
	logger        *errors.Logger
}

// NewCertReloader loads the certificate described by cfg, from PEM content
// when set and from files otherwise.
func NewCertReloader(cfg config.TLSConfig, om *observability.ObservabilityManager, logger *errors.Logger) (*CertReloader, error) {
	debounce := cfg.AutoReload.DebounceDelay
	if debounce <= 0 {
		debounce = time.Second
	}

	cr := &CertReloader{
		certPEM:       cfg.CertContent,
		keyPEM:        cfg.KeyContent,
		debounceDelay: debounce,
		stopChan:      make(chan struct{}),
		observability: om,
		logger:        logger,
	}
	if cfg.CertContent == "" {
		cr.certFile = filepath.Clean(cfg.CertFile)
		cr.keyFile = filepath.Clean(cfg.KeyFile)
	}

	cert, err := cr.load()
	if err != nil {
		return nil, err
	}
	cr.store(cert)
	return cr, nil
}

func (cr *CertReloader) load() (*tls.Certificate, error) {
	var cert tls.Certificate
	var err error
	if cr.certPEM != "" {
		cert, err = tls.X509KeyPair([]byte(cr.certPEM), []byte(cr.keyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
	} else {
		cert, err = tls.LoadX509KeyPair(cr.certFile, cr.keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
	}

	if cert.Leaf == nil && len(cert.Certificate) > 0 {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse server certificate: %w", err)
		}
		cert.Leaf = leaf
	}
	return &cert, nil
}

func (cr *CertReloader) store(cert *tls.Certificate) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.cert = cert
	if cert.Leaf != nil {
		cr.expiry = cert.Leaf.NotAfter
	}
}

// Reload reads the certificate files again. The previous certificate
// stays in use when loading fails.
func (cr *CertReloader) Reload() error {
	cert, err := cr.load()

	cr.mu.Lock()
	cr.reloadCount++
	cr.lastReloadTime = time.Now()
	if err != nil {
		cr.reloadFailures++
		cr.lastReloadError = err.Error()
	} else {
		cr.lastReloadError = ""
	}
	cr.mu.Unlock()

	// Reloads run outside any request.
	cr.observability.RecordCertReload(context.Background(), err == nil)

	if err != nil {
		cr.logger.LogError(err, "Failed to reload TLS certificates")
		return err
	}

	cr.store(cert)
	cr.logger.Info("TLS certificates reloaded successfully",
		"expires", cert.Leaf.NotAfter.Format(time.RFC3339))
	return nil
}

// GetCertificate implements tls.Config.GetCertificate
func (cr *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.cert, nil
}

// Start watches the certificate files. It is a no-op for certificates
// loaded from content.
func (cr *CertReloader) Start() error {
	if cr.certFile == "" {
		return nil
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()
	if cr.running {
		return fmt.Errorf("certificate watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch directories so atomic replacements (rename over) are seen.
	dirs := map[string]bool{filepath.Dir(cr.certFile): true, filepath.Dir(cr.keyFile): true}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	cr.fsWatcher = watcher
	cr.running = true
	go cr.watchLoop(watcher)

	cr.logger.Info("Certificate file watcher started",
		"files", cr.WatchedFiles(),
		"debounce_delay", cr.debounceDelay)
	return nil
}

// Stop stops watching the certificate files
func (cr *CertReloader) Stop() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.running {
		return nil
	}
	close(cr.stopChan)
	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	cr.running = false

	if err := cr.fsWatcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	cr.logger.Info("Certificate file watcher stopped")
	return nil
}

func (cr *CertReloader) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if cr.isWatchedEvent(event) {
				cr.scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cr.logger.LogError(err, "File watcher error")
		case <-cr.stopChan:
			return
		}
	}
}

func (cr *CertReloader) isWatchedEvent(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)
	if name != cr.certFile && name != cr.keyFile {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleReload reloads once events have been quiet for the debounce delay
func (cr *CertReloader) scheduleReload() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.running {
		return
	}
	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	cr.debounceTimer = time.AfterFunc(cr.debounceDelay, func() {
		// Errors are logged and counted by Reload.
		_ = cr.Reload()
	})
}

// IsRunning reports whether the file watcher is active
func (cr *CertReloader) IsRunning() bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.running
}

// WatchedFiles returns the certificate files, empty for content certificates
func (cr *CertReloader) WatchedFiles() []string {
	if cr.certFile == "" {
		return []string{}
	}
	return []string{cr.certFile, cr.keyFile}
}

// Health reports certificate expiry and reload status
func (cr *CertReloader) Health() map[string]any {
	return cr.healthAt(time.Now())
}

func (cr *CertReloader) healthAt(now time.Time) map[string]any {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	timeToExpiry := cr.expiry.Sub(now)
	status := map[string]any{
		"expires":              cr.expiry.Format(time.RFC3339),
		"time_to_expiry_hours": int(timeToExpiry.Hours()),
	}

	switch {
	case timeToExpiry <= 0:
		status["healthy"] = false
		status["status"] = "expired"
		status["message"] = "Certificate has expired"
	case timeToExpiry <= criticalCertThreshold:
		status["healthy"] = false
		status["status"] = "critical"
		status["message"] = "Certificate expires within 24 hours"
	case timeToExpiry <= warningCertThreshold:
		status["healthy"] = true
		status["status"] = "warning"
		status["message"] = "Certificate expires within 7 days"
	default:
		status["healthy"] = true
		status["status"] = "ok"
		status["message"] = "Certificate is valid"
	}

	autoReload := map[string]any{
		"enabled":         cr.running,
		"reload_count":    cr.reloadCount,
		"reload_failures": cr.reloadFailures,
	}
	if cr.running {
		autoReload["watched_files"] = cr.WatchedFiles()
	}
	if !cr.lastReloadTime.IsZero() {
		autoReload["last_reload_time"] = cr.lastReloadTime.Format(time.RFC3339)
	}
	if cr.lastReloadError != "" {
		autoReload["last_reload_error"] = cr.lastReloadError
	}
	status["auto_reload"] = autoReload

	return status
}
