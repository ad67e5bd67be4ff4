package projects

import "github.com/GoCodeAlone/projects/archive"

// AttachmentHandler adds and reads the archive members of a compressed
// document other than its primary member.
type AttachmentHandler interface {
	// RegisterAttachments is called while saving, before the document body is
	// encoded. Register each attachment with the compressor and write its
	// content to the returned path.
	RegisterAttachments(c *archive.Compressor) error

	// ConsumeAttachments is called while opening, after the document body was
	// decoded, with the names of every other member. Paths come from
	// e.FilePath and are removed once Open returns.
	ConsumeAttachments(e *archive.Extractor, members []string) error
}

// AttachmentHooks adapts a pair of functions to AttachmentHandler. Either may
// be nil.
type AttachmentHooks struct {
	Register func(c *archive.Compressor) error
	Consume  func(e *archive.Extractor, members []string) error
}

func (h AttachmentHooks) RegisterAttachments(c *archive.Compressor) error {
	if h.Register == nil {
		return nil
	}
	return h.Register(c)
}

func (h AttachmentHooks) ConsumeAttachments(e *archive.Extractor, members []string) error {
	if h.Consume == nil {
		return nil
	}
	return h.Consume(e, members)
}

func (d *Document) attachmentHandler() AttachmentHandler {
	if d.attachments != nil {
		return d.attachments
	}
	if handler, ok := d.owner.(AttachmentHandler); ok {
		return handler
	}
	return nil
}
