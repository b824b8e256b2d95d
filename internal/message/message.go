package message

import (
	"net/mail"
	"strings"
	"time"

	"kestrel/internal/dehtml"
	"kestrel/internal/rfc822"
	"kestrel/internal/simplify"
)

// Param keys used in PartInfo.Params.
const (
	ParamFilename   = "file_name"
	ParamMimetype   = "mime_type"
	ParamQuote      = "quote"
	ParamFooter     = "footer"
	ParamForwarded  = "forwarded"
	ParamCharset    = "charset"
	ParamWebrtcRoom = "webrtc_room"
)

// PartInfo is one chat-displayable part of a message.
type PartInfo struct {
	Viewtype Viewtype
	// Text is the simplified message text for text parts, empty for
	// binary parts.
	Text string
	// Data is the decoded body of a non-text part.
	Data []byte
	// Params carries filename, mimetype and quote/footer metadata.
	Params map[string]string
	// Section addresses the originating part in the MIME tree.
	Section rfc822.SectionID
}

// Message is the chat-ready form of one parsed mail.
type Message struct {
	Subject   string
	From      []*mail.Address
	To        []*mail.Address
	Cc        []*mail.Address
	Date      time.Time
	MessageID string
	InReplyTo []string
	References []string

	IsForwarded bool
	Parts       []PartInfo
}

// FromPart assembles the chat view of a parsed message. isChatMessage
// marks mail sent by another instance of this protocol (detected by
// the caller from its headers), which changes how aggressively text is
// simplified. Assembly never fails outright: unrecognized structure
// degrades to fewer or simpler parts.
func FromPart(root *rfc822.Part, isChatMessage bool) *Message {
	m := &Message{
		Subject:   decodeHeaderText(root.Subject()),
		From:      root.Addresses(rfc822.FieldFrom),
		To:        root.Addresses(rfc822.FieldTo),
		Cc:        root.Addresses(rfc822.FieldCc),
		Date:      root.Date(),
		MessageID: root.MessageID(),
	}
	if f := root.Field(rfc822.FieldInReplyTo); f != nil {
		m.InReplyTo = f.MessageIDs
	}
	if f := root.Field(rfc822.FieldReferences); f != nil {
		m.References = f.MessageIDs
	}

	a := assembler{
		msg:         m,
		isChat:      isChatMessage,
		chatContent: strings.ToLower(root.HeaderValue("Chat-Content")),
		voice:       root.HeaderValue("Chat-Voice-Message") == "1",
		webrtcRoom:  root.HeaderValue("Chat-Webrtc-Room"),
	}
	a.collect(root)
	return m
}

type assembler struct {
	msg    *Message
	isChat bool

	// Chat-* headers of the outer message that change how leaves are
	// typed.
	chatContent string
	voice       bool
	webrtcRoom  string
}

// collect walks the part tree, flattening the standard multipart
// containers into the chat part list.
func (a *assembler) collect(p *rfc822.Part) {
	switch p.Kind {
	case rfc822.PartMultipart:
		switch p.ContentType.Subtype {
		case "alternative":
			if best := pickAlternative(p); best != nil {
				a.collect(best)
			}
		case "related":
			// The root part carries the content; siblings are inline
			// resources referenced by cid.
			if len(p.Children) > 0 {
				a.collect(p.Children[0])
			}
		case "signed":
			// Only the first child is the signed content; the
			// signature part is transport metadata.
			if len(p.Children) > 0 {
				a.collect(p.Children[0])
			}
		default:
			for _, c := range p.Children {
				a.collect(c)
			}
		}
	case rfc822.PartMessage:
		if p.Embedded != nil {
			a.collect(p.Embedded)
		}
	default:
		a.leaf(p)
	}
}

// pickAlternative chooses which child of multipart/alternative to
// render: plain text when available, else HTML, else the first child.
func pickAlternative(p *rfc822.Part) *rfc822.Part {
	var htmlPart *rfc822.Part
	for _, c := range p.Children {
		ct := c.ContentType
		if ct == nil {
			continue
		}
		if ct.Type == "text" && ct.Subtype == "plain" {
			return c
		}
		if ct.Type == "text" && ct.Subtype == "html" && htmlPart == nil {
			htmlPart = c
		}
	}
	if htmlPart != nil {
		return htmlPart
	}
	if len(p.Children) > 0 {
		return p.Children[0]
	}
	return nil
}

func (a *assembler) leaf(p *rfc822.Part) {
	vt := viewtypeFor(p)
	switch {
	case vt == ViewtypeAudio && a.voice:
		vt = ViewtypeVoice
	case vt == ViewtypeImage && a.chatContent == "sticker":
		vt = ViewtypeSticker
	case vt == ViewtypeText && a.chatContent == "videochat-invitation":
		vt = ViewtypeVideochatInvitation
	}
	info := PartInfo{
		Viewtype: vt,
		Params:   map[string]string{},
		Section:  p.SectionID(),
	}
	if ct := p.ContentType; ct != nil {
		info.Params[ParamMimetype] = ct.String()
	}

	if vt == ViewtypeText || vt == ViewtypeVideochatInvitation {
		if vt == ViewtypeVideochatInvitation && a.webrtcRoom != "" {
			info.Params[ParamWebrtcRoom] = a.webrtcRoom
		}
		text := a.renderText(p)
		res := simplify.Simplify(text, a.isChat)
		if vt == ViewtypeText && strings.TrimSpace(res.Text) == "" {
			return // nothing displayable, drop the part
		}
		info.Text = res.Text
		if res.Quote != "" {
			info.Params[ParamQuote] = res.Quote
		}
		if res.Footer != "" {
			info.Params[ParamFooter] = res.Footer
		}
		if res.IsForwarded {
			info.Params[ParamForwarded] = "1"
			a.msg.IsForwarded = true
		}
	} else {
		info.Data = p.Body
		if fn := p.Filename(); fn != "" {
			info.Params[ParamFilename] = decodeHeaderText(fn)
		}
	}
	a.msg.Parts = append(a.msg.Parts, info)
}

// renderText decodes a text leaf to UTF-8 and, for HTML, converts it
// to quote-aware plain text.
func (a *assembler) renderText(p *rfc822.Part) string {
	label := ""
	if p.ContentType != nil {
		label = p.ContentType.Param("charset")
	}
	text := decodeText(p.Body, label)
	if p.ContentType != nil {
		if p.ContentType.Subtype == "html" {
			return dehtml.Dehtml(text)
		}
		if strings.EqualFold(p.ContentType.Param("format"), "flowed") {
			delsp := strings.EqualFold(p.ContentType.Param("delsp"), "yes")
			text = dehtml.UnwrapFlowed(text, delsp)
		}
	}
	return text
}
