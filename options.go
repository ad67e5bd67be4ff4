package projects

import (
	"fmt"
	"strings"
	"time"

	"github.com/GoCodeAlone/projects/archive"
	"github.com/GoCodeAlone/projects/codec"
)

// Option configures a document created by New or Open.
type Option func(*Document) error

// WithLogger sets the logger for the document and its archive staging. A nil
// logger keeps the default, which discards everything.
func WithLogger(logger Logger) Option {
	return func(d *Document) error {
		if logger != nil {
			d.logger = logger
		}
		return nil
	}
}

// WithCodec sets the codec used for the document body. XML is the default.
func WithCodec(c codec.Codec) Option {
	return func(d *Document) error {
		if c == nil {
			return fmt.Errorf("%w: nil codec", ErrUnknownCodec)
		}
		d.codec = c
		return nil
	}
}

// WithCodecName selects a registered codec by name, e.g. "yaml".
func WithCodecName(name string) Option {
	return func(d *Document) error {
		c, err := codec.Lookup(name)
		if err != nil {
			return err
		}
		d.codec = c
		return nil
	}
}

// WithPrimaryMember sets the archive member holding the document body. The
// default is "Project" plus the codec's extension.
func WithPrimaryMember(name string) Option {
	return func(d *Document) error {
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: primary member %q must be a bare file name", ErrInvalidMember, name)
		}
		d.primaryMember = name
		return nil
	}
}

// WithAttachments sets the handler that adds and reads the extra members of
// compressed documents. Without one, the document type itself is used if it
// implements AttachmentHandler.
func WithAttachments(handler AttachmentHandler) Option {
	return func(d *Document) error {
		d.attachments = handler
		return nil
	}
}

// WithObserver registers observer for the given event types before the
// document is opened, so it receives the opened event.
func WithObserver(observer Observer, eventTypes ...string) Option {
	return func(d *Document) error {
		return d.RegisterObserver(observer, eventTypes...)
	}
}

// WithOpenedHandler registers fn with OnOpened before the document is read.
func WithOpenedHandler(fn func()) Option {
	return func(d *Document) error {
		d.OnOpened(fn)
		return nil
	}
}

// WithArchiveOptions passes options to the stagers used when reading and
// writing compressed documents.
func WithArchiveOptions(opts ...archive.Option) Option {
	return func(d *Document) error {
		d.archiveOpts = append(d.archiveOpts, opts...)
		return nil
	}
}

// WithWatchDebounce sets how long Watch waits for disk events to settle.
func WithWatchDebounce(debounce time.Duration) Option {
	return func(d *Document) error {
		d.watchDebounce = debounce
		return nil
	}
}

// WithConfig applies cfg: codec, primary member, staging location,
// compression level and watch debounce. Compression is a property of the
// file, not of the document, so cfg.Compression is only read by
// NewFromConfig.
func WithConfig(cfg *Config) Option {
	return func(d *Document) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if cfg.Codec != "" {
			c, err := codec.Lookup(cfg.Codec)
			if err != nil {
				return err
			}
			d.codec = c
		}
		if cfg.PrimaryMember != "" {
			if err := WithPrimaryMember(cfg.PrimaryMember)(d); err != nil {
				return err
			}
		}
		if cfg.WatchDebounce > 0 {
			d.watchDebounce = cfg.WatchDebounce
		}
		d.archiveOpts = append(d.archiveOpts, cfg.ArchiveOptions()...)
		return nil
	}
}
