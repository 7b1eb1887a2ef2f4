package layout

import (
	"log/slog"
	"sync"

	"mediaorg/internal/config"
	"mediaorg/internal/logging"
)

type cacheEntry struct {
	folder       Definition
	nameTemplate string
	name         Definition
}

// Cache memoizes the folder and file-name definitions parsed from a config.
// Entries are keyed by the config identity and survive changes to the
// underlying config until Invalidate is called.
type Cache struct {
	logger *slog.Logger

	mu      sync.Mutex
	cfg     *config.Config
	entries map[string]*cacheEntry
}

// NewCache binds a definition cache to cfg. A nil cfg uses the built-in defaults.
func NewCache(cfg *config.Config, logger *slog.Logger) *Cache {
	return &Cache{
		logger:  logging.NewComponentLogger(logger, "layout"),
		cfg:     cfg,
		entries: make(map[string]*cacheEntry),
	}
}

// FolderDefinition returns the cached folder definition, parsing it on first use.
func (c *Cache) FolderDefinition() Definition {
	return c.entry().folder
}

// NameDefinition returns the cached file-name template and its definition.
func (c *Cache) NameDefinition() (string, Definition) {
	entry := c.entry()
	return entry.nameTemplate, entry.name
}

// Use rebinds the cache to another config. Definitions already cached for the
// new config's identity are reused.
func (c *Cache) Use(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// Invalidate drops every cached definition so the next call re-reads the config.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func (c *Cache) entry() *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.cfg.Identity()
	if entry, ok := c.entries[key]; ok {
		return entry
	}
	entry := c.load()
	c.entries[key] = entry
	return entry
}

func (c *Cache) load() *cacheEntry {
	entry := &cacheEntry{
		folder:       DefaultFolderDefinition(),
		nameTemplate: DefaultNameTemplate,
	}
	if c.cfg == nil {
		entry.name = DefaultNameDefinition()
		return entry
	}

	if raw := c.cfg.FullPath(); raw != "" {
		folder, err := NewParser(c.cfg.DirectoryMacros()).Parse(raw)
		switch {
		case err != nil:
			logging.WarnWithContext(c.logger, "folder template invalid; using default layout", "definition_error",
				logging.String("template", raw),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "define every macro referenced by [directory] full_path"),
				logging.String(logging.FieldImpact, "files are organized with the built-in folder layout"),
			)
		case len(folder) > 0:
			entry.folder = folder
		}
	}

	raw := c.cfg.File.Name
	if raw == "" {
		raw = DefaultNameTemplate
	}
	name, err := ParseName(raw, c.cfg.File.Date)
	if err != nil {
		logging.WarnWithContext(c.logger, "file name template invalid; using default name", "definition_error",
			logging.String("template", raw),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "use only known placeholders in [file] name"),
			logging.String(logging.FieldImpact, "files are named with the built-in template"),
		)
		raw = DefaultNameTemplate
		name, _ = ParseName(raw, c.cfg.File.Date)
	}
	entry.nameTemplate = raw
	entry.name = name
	c.logger.Debug("definitions loaded",
		logging.String("identity", c.cfg.Identity()),
		logging.String("folder", entry.folder.String()),
		logging.String("name", raw),
	)
	return entry
}
