// Package message turns a parsed MIME tree into the structured chat
// message the chat layer displays: a flat list of typed parts with
// decoded text, filenames and quote/footer metadata.
package message

import (
	"strings"

	"kestrel/internal/rfc822"
)

// Viewtype says how the chat layer should render a part.
type Viewtype int

const (
	ViewtypeUnknown Viewtype = iota
	ViewtypeText
	ViewtypeImage
	ViewtypeGif
	ViewtypeSticker
	ViewtypeAudio
	ViewtypeVoice
	ViewtypeVideo
	ViewtypeVideochatInvitation
	ViewtypeWebxdc
	ViewtypeFile
)

func (v Viewtype) String() string {
	switch v {
	case ViewtypeText:
		return "Text"
	case ViewtypeImage:
		return "Image"
	case ViewtypeGif:
		return "Gif"
	case ViewtypeSticker:
		return "Sticker"
	case ViewtypeAudio:
		return "Audio"
	case ViewtypeVoice:
		return "Voice"
	case ViewtypeVideo:
		return "Video"
	case ViewtypeVideochatInvitation:
		return "VideochatInvitation"
	case ViewtypeWebxdc:
		return "Webxdc"
	case ViewtypeFile:
		return "File"
	}
	return "Unknown"
}

// viewtypeFor derives the Viewtype of a leaf part from its content
// type and disposition. Anything typed but unrecognized is a File;
// explicit attachments of text types are Files too, since they were
// not meant to be read inline.
func viewtypeFor(p *rfc822.Part) Viewtype {
	ct := p.ContentType
	if ct == nil {
		return ViewtypeText
	}
	switch ct.Type {
	case "text":
		if p.IsAttachment() {
			return ViewtypeFile
		}
		switch ct.Subtype {
		case "plain", "html":
			return ViewtypeText
		}
		return ViewtypeFile
	case "image":
		if ct.Subtype == "gif" {
			return ViewtypeGif
		}
		return ViewtypeImage
	case "audio":
		return ViewtypeAudio
	case "video":
		return ViewtypeVideo
	case "application":
		if ct.Subtype == "x-webxdc" ||
			strings.HasSuffix(strings.ToLower(p.Filename()), ".xdc") {
			return ViewtypeWebxdc
		}
		return ViewtypeFile
	}
	return ViewtypeFile
}
