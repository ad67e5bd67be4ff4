// Package projects persists application documents either as a single encoded
// file or as a zip archive holding the encoded document plus attachments.
//
// A document type embeds Document and is created with New or read with Open:
//
//	type Drawing struct {
//		projects.Document `yaml:",inline"`
//		XMLName xml.Name `xml:"drawing" json:"-" yaml:"-" cbor:"-"`
//		Layers  []*Layer `xml:"layer"`
//	}
//
//	drawing, err := projects.Open[Drawing](path, projects.Compressed)
//
// Documents track unsaved changes, follow the changes of the objects they
// contain through Track, and notify callbacks and CloudEvents observers when
// they are opened, saved, modified and closed. A document is not safe for
// concurrent use; callers serialize opens, saves and mutation.
package projects

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/GoCodeAlone/projects/archive"
	"github.com/GoCodeAlone/projects/codec"
)

// Persistable is implemented by every type that embeds Document.
type Persistable interface {
	Base() *Document
}

// DocumentPointer constrains the type parameters of New, Open and Reopen to
// a pointer to a struct embedding Document.
type DocumentPointer[T any] interface {
	*T
	Persistable
}

// Initializer is implemented by document types that need to wire up their
// contents, typically calling Track on child objects, after New or Open.
type Initializer interface {
	InitDocument() error
}

// Document is the persistence state shared by all document types. Embed it
// by value; its zero value is not bound to an owner until New or Open.
type Document struct {
	Entity `yaml:",inline"`

	path        string
	compression Compression
	creation    CreationMethod
	closed      bool
	bound       bool
	owner       any

	codec         codec.Codec
	primaryMember string
	attachments   AttachmentHandler
	archiveOpts   []archive.Option
	logger        Logger

	observers      observerRegistry
	openedHandlers handlerList[func()]
	closedHandlers handlerList[func()]
	savedHandlers  handlerList[func()]
	children       []*trackedChild

	watchMu       sync.Mutex
	lastWrite     fileStamp
	watchDebounce time.Duration
}

type trackedChild struct {
	child       Modifiable
	unsubscribe Unsubscribe
}

// Base returns d. It lets generic code reach the Document embedded in a
// document type.
func (d *Document) Base() *Document {
	return d
}

// New creates an empty document of type T. The document has no path, is
// clean and reports Instantiated.
func New[T any, PT DocumentPointer[T]](compression Compression, opts ...Option) (PT, error) {
	if !compression.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, int(compression))
	}
	doc := PT(new(T))
	base := doc.Base()
	if err := base.bind(doc, opts); err != nil {
		return nil, err
	}
	base.compression = compression
	base.creation = Instantiated

	if err := initialize(doc); err != nil {
		return nil, err
	}
	base.markSaved()
	base.logger.Debug("Document created", "type", fmt.Sprintf("%T", doc), "compression", compression.String())
	return doc, nil
}

// NewFromConfig creates an empty document of type T in cfg's compression
// mode with cfg applied through WithConfig. Options in opts run after cfg.
func NewFromConfig[T any, PT DocumentPointer[T]](cfg *Config, opts ...Option) (PT, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	compression, err := cfg.CompressionMode()
	if err != nil {
		return nil, err
	}
	return New[T, PT](compression, append([]Option{WithConfig(cfg)}, opts...)...)
}

// Open reads a document of type T from path. Compressed documents are
// extracted to a staging directory, decoded from their primary member, and
// the remaining members are handed to the attachment handler. Uncompressed
// documents are decoded from path directly.
func Open[T any, PT DocumentPointer[T]](path string, compression Compression, opts ...Option) (PT, error) {
	if !compression.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, int(compression))
	}
	doc := PT(new(T))
	base := doc.Base()
	if err := base.bind(doc, opts); err != nil {
		return nil, err
	}

	if err := base.load(path, compression); err != nil {
		base.logger.Error("Failed to open document", "path", path, "compression", compression.String(), "error", err)
		return nil, err
	}
	base.path = path
	base.compression = compression
	base.creation = Deserialized

	if err := initialize(doc); err != nil {
		return nil, err
	}
	base.markSaved()
	base.rememberDisk()

	base.logger.Info("Document opened", "path", path, "compression", compression.String())
	base.fire(&base.openedHandlers, EventTypeDocumentOpened)
	return doc, nil
}

// Reopen reads doc again from its path, discarding unsaved changes. The new
// document keeps doc's codec, primary member, logger, archive options, watch
// debounce and injected attachment handler; opts are applied after those.
func Reopen[T any, PT DocumentPointer[T]](doc PT, opts ...Option) (PT, error) {
	base := doc.Base()
	if base.closed {
		return nil, ErrClosed
	}
	inherited := []Option{
		WithCodec(base.codec),
		WithPrimaryMember(base.primaryMember),
		WithLogger(base.logger),
		WithArchiveOptions(base.archiveOpts...),
		WithWatchDebounce(base.watchDebounce),
	}
	if base.attachments != nil {
		inherited = append(inherited, WithAttachments(base.attachments))
	}
	return Open[T, PT](base.path, base.compression, append(inherited, opts...)...)
}

func initialize(doc any) error {
	if init, ok := doc.(Initializer); ok {
		if err := init.InitDocument(); err != nil {
			return fmt.Errorf("initialize document: %w", err)
		}
	}
	return nil
}

func (d *Document) bind(owner any, opts []Option) error {
	d.owner = owner
	d.codec = codec.XML
	d.logger = discardLogger()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(d); err != nil {
			return err
		}
	}
	if d.primaryMember == "" {
		d.primaryMember = "Project" + d.codec.Extension()
	}

	d.SetSender(owner)
	d.OnModifiedChanged(func(_ any, modified bool) {
		d.emit(EventTypeDocumentModified, map[string]any{"modified": modified})
	})
	d.OnPropertyChanged(func(_ any, name string) {
		d.emit(EventTypeDocumentPropertyChanged, map[string]any{"property": name})
	})
	d.bound = true
	return nil
}

func (d *Document) load(path string, compression Compression) error {
	switch compression {
	case Compressed:
		return d.loadArchive(path)
	case Uncompressed:
		return d.decodeFile(path)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidCompression, int(compression))
	}
}

func (d *Document) loadArchive(path string) error {
	extractor, err := archive.Extract(path, d.archiveOptions()...)
	if err != nil {
		return err
	}
	defer extractor.Close()

	primary, err := extractor.FilePath(d.primaryMember)
	if err != nil {
		return err
	}
	if err := d.decodeFile(primary); err != nil {
		return err
	}

	handler := d.attachmentHandler()
	if handler == nil {
		return nil
	}
	rest := make([]string, 0, len(extractor.Members()))
	for _, member := range extractor.Members() {
		if !strings.EqualFold(member, d.primaryMember) {
			rest = append(rest, member)
		}
	}
	if err := handler.ConsumeAttachments(extractor, rest); err != nil {
		return fmt.Errorf("read attachments: %w", err)
	}
	return nil
}

func (d *Document) decodeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := d.codec.Decode(f, d.owner); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Save writes the document to its current path. The path must pass
// IsWritablePath.
func (d *Document) Save() error {
	if d.closed {
		return ErrClosed
	}
	if !d.IsSaveable() {
		return fmt.Errorf("%w: %q", ErrNotSaveable, d.path)
	}
	return d.save()
}

// SaveAs sets the document path and writes the document there. Unlike Save
// it does not check the path up front; an existing file that cannot be
// replaced yields ErrCannotOverwrite.
func (d *Document) SaveAs(path string) error {
	if d.closed {
		return ErrClosed
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrNotSaveable)
	}
	d.path = path
	return d.save()
}

func (d *Document) save() error {
	// An unbound Document does not know its owner and would encode only
	// itself.
	if !d.bound {
		return ErrNotBound
	}
	if err := archive.CheckOverwrite(d.path); err != nil {
		d.logger.Error("Failed to save document", "path", d.path, "error", err)
		return err
	}

	var err error
	switch d.compression {
	case Compressed:
		err = d.saveArchive()
	case Uncompressed:
		err = d.writeUncompressed()
	default:
		err = fmt.Errorf("%w: %d", ErrInvalidCompression, int(d.compression))
	}
	if err != nil {
		d.logger.Error("Failed to save document", "path", d.path, "compression", d.compression.String(), "error", err)
		return err
	}

	d.markSaved()
	d.rememberDisk()
	d.logger.Info("Document saved", "path", d.path, "compression", d.compression.String())
	d.fire(&d.savedHandlers, EventTypeDocumentSaved)
	return nil
}

func (d *Document) saveArchive() error {
	compressor, err := archive.NewCompressor(d.path, d.archiveOptions()...)
	if err != nil {
		return err
	}
	defer compressor.Close()

	primary, err := compressor.RegisterFile(d.primaryMember)
	if err != nil {
		return err
	}
	if handler := d.attachmentHandler(); handler != nil {
		if err := handler.RegisterAttachments(compressor); err != nil {
			return fmt.Errorf("write attachments: %w", err)
		}
	}
	if err := d.encodeFile(primary); err != nil {
		return err
	}
	return compressor.Compress()
}

func (d *Document) encodeFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := d.codec.Encode(f, d.owner); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (d *Document) writeUncompressed() error {
	return archive.WriteFileAtomic(d.path, func(w io.Writer) error {
		return d.codec.Encode(w, d.owner)
	})
}

func (d *Document) archiveOptions() []archive.Option {
	opts := make([]archive.Option, 0, len(d.archiveOpts)+1)
	opts = append(opts, archive.WithLogger(d.logger))
	return append(opts, d.archiveOpts...)
}

// markSaved clears the modified flag of the document and of every tracked
// child that accepts it.
func (d *Document) markSaved() {
	d.MarkSaved()
	for _, tc := range d.children {
		if saver, ok := tc.child.(Saver); ok {
			saver.MarkSaved()
		}
	}
}

// Track follows child's modified flag: when the child becomes modified the
// document does too. A child becoming clean never clears the document. A
// child that is already modified marks the document immediately. The
// returned func stops tracking.
func (d *Document) Track(child Modifiable) Unsubscribe {
	tc := &trackedChild{child: child}
	tc.unsubscribe = child.OnModifiedChanged(func(_ any, modified bool) {
		if modified {
			d.MarkModified()
		}
	})
	d.children = append(d.children, tc)
	if child.Modified() {
		d.MarkModified()
	}

	return func() {
		tc.unsubscribe()
		for i, existing := range d.children {
			if existing == tc {
				d.children = append(d.children[:i:i], d.children[i+1:]...)
				return
			}
		}
	}
}

// Close marks the document closed and notifies OnClosed handlers. Further
// calls do nothing. A closed document can no longer be saved or reopened.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.log().Info("Document closed", "path", d.path)
	d.fire(&d.closedHandlers, EventTypeDocumentClosed)
	return nil
}

// Path returns the file the document was opened from or last saved to.
func (d *Document) Path() string {
	return d.path
}

// SetPath changes where Save writes.
func (d *Document) SetPath(path string) {
	d.path = path
}

// FileName returns the last element of the path, or "" without a path.
func (d *Document) FileName() string {
	if d.path == "" {
		return ""
	}
	return filepath.Base(d.path)
}

// IsSaveable reports whether Save can write to the current path.
func (d *Document) IsSaveable() bool {
	return IsWritablePath(d.path)
}

// IsClosed reports whether Close has been called.
func (d *Document) IsClosed() bool {
	return d.closed
}

// Compression returns the storage mode.
func (d *Document) Compression() Compression {
	return d.compression
}

// SetCompression changes the storage mode used by the next save.
func (d *Document) SetCompression(compression Compression) error {
	if !compression.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCompression, int(compression))
	}
	d.compression = compression
	return nil
}

// CreationMethod reports whether the document was created or opened.
func (d *Document) CreationMethod() CreationMethod {
	return d.creation
}

// Codec returns the codec used to encode the document.
func (d *Document) Codec() codec.Codec {
	if d.codec == nil {
		return codec.XML
	}
	return d.codec
}

// PrimaryMember returns the archive member holding the encoded document.
func (d *Document) PrimaryMember() string {
	if d.primaryMember == "" {
		return "Project" + d.Codec().Extension()
	}
	return d.primaryMember
}

// OnOpened registers fn to run after the document has been opened. Handlers
// are usually registered through WithOpenedHandler since Open fires before
// it returns.
func (d *Document) OnOpened(fn func()) Unsubscribe {
	return d.openedHandlers.add(fn)
}

// OnClosed registers fn to run when the document is closed.
func (d *Document) OnClosed(fn func()) Unsubscribe {
	return d.closedHandlers.add(fn)
}

// OnSaved registers fn to run after each successful save.
func (d *Document) OnSaved(fn func()) Unsubscribe {
	return d.savedHandlers.add(fn)
}

func (d *Document) fire(handlers *handlerList[func()], eventType string) {
	for _, fn := range handlers.snapshot() {
		fn()
	}
	d.emit(eventType, nil)
}

func (d *Document) emit(eventType string, extra map[string]any) {
	if !d.observers.any() {
		return
	}
	data := map[string]any{
		"path":        d.path,
		"fileName":    d.FileName(),
		"compression": d.compression.String(),
	}
	for k, v := range extra {
		data[k] = v
	}
	event := NewCloudEvent(eventType, EventSourceDocument, data, nil)
	if err := d.NotifyObservers(context.Background(), event); err != nil {
		d.log().Error("Failed to notify observers", "event", eventType, "error", err)
	}
}
