package classify

// Attachment is an inbound file element of a chat message. The set of
// implementations is closed: Audio, Document and Other.
type Attachment interface {
	attachmentKind() Kind
}

// Kind discriminates attachment variants.
type Kind int

const (
	KindOther Kind = iota
	KindAudio
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindDocument:
		return "document"
	default:
		return "other"
	}
}

// Audio is a file the transport delivered as playable audio. Every field is
// optional.
type Audio struct {
	FileName  string
	Performer string
	Title     string
}

// Document is a generic file upload.
type Document struct {
	FileName string
}

// Other covers attachment kinds that are never music (photos, stickers, ...).
type Other struct {
	Kind string
}

func (Audio) attachmentKind() Kind    { return KindAudio }
func (Document) attachmentKind() Kind { return KindDocument }
func (Other) attachmentKind() Kind    { return KindOther }

// KindOf reports the variant of a, treating nil (including typed nil
// pointers) as KindOther.
func KindOf(a Attachment) Kind {
	switch att := a.(type) {
	case nil:
		return KindOther
	case *Audio:
		if att == nil {
			return KindOther
		}
	case *Document:
		if att == nil {
			return KindOther
		}
	case *Other:
		if att == nil {
			return KindOther
		}
	}
	return a.attachmentKind()
}
