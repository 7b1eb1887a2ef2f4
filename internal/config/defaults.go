package config

const (
	defaultDatabasePath       = "~/.local/share/mediaorg/mediaorg.db"
	defaultLogDir             = "~/.local/share/mediaorg/logs"
	defaultTrashDir           = "~/.local/share/mediaorg/trash"
	defaultLockFile           = "~/.local/share/mediaorg/mediaorg.lock"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultCollisionPolicy    = CollisionRename
	defaultGeolocationURL     = "https://nominatim.openstreetmap.org"
	defaultGeolocationTimeout = 10
	defaultExifToolBinary     = "exiftool"
	defaultFFprobeBinary      = "ffprobe"
	defaultUploadConcurrency  = 2
	defaultUploadTimeout      = 60
	defaultNotifyTimeout      = 10
)

// Collision policies applied when a different file already occupies the
// destination and duplicates are allowed.
const (
	CollisionRename    = "rename"
	CollisionOverwrite = "overwrite"
)

// Default returns a Config populated with repository defaults. File name and
// folder templates are left empty so the built-in definitions apply.
func Default() Config {
	return Config{
		Paths: Paths{
			Database: defaultDatabasePath,
			LogDir:   defaultLogDir,
			TrashDir: defaultTrashDir,
			LockFile: defaultLockFile,
		},
		Library: Library{
			CollisionPolicy: defaultCollisionPolicy,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Geolocation: Geolocation{
			BaseURL:       defaultGeolocationURL,
			PreferEnglish: true,
			Timeout:       defaultGeolocationTimeout,
		},
		ExifTool: ExifTool{
			Binary: defaultExifToolBinary,
		},
		FFprobe: FFprobe{
			Binary: defaultFFprobeBinary,
		},
		GooglePhotos: GooglePhotos{
			Concurrency: defaultUploadConcurrency,
			Timeout:     defaultUploadTimeout,
		},
		Notify: Notify{
			RequestTimeout: defaultNotifyTimeout,
		},
	}
}
