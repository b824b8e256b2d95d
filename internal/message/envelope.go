package message

import (
	"fmt"
	"net/mail"
	"strings"

	"kestrel/internal/rfc822"
)

// BuildEnvelope renders the IMAP ENVELOPE structure (RFC 3501 §7.4.2)
// of a parsed message: (date subject from sender reply-to to cc bcc
// in-reply-to message-id). Sender and reply-to default to the from
// list when the message carries no explicit header for them.
func BuildEnvelope(p *rfc822.Part) string {
	from := p.Addresses(rfc822.FieldFrom)
	sender := p.Addresses(rfc822.FieldSender)
	replyTo := p.Addresses(rfc822.FieldReplyTo)
	if len(sender) == 0 {
		sender = from
	}
	if len(replyTo) == 0 {
		replyTo = from
	}

	return fmt.Sprintf("ENVELOPE (%s %s %s %s %s %s %s %s %s %s)",
		quoteOrNIL(p.HeaderValue("Date")),
		quoteOrNIL(p.Subject()),
		addressList(from),
		addressList(sender),
		addressList(replyTo),
		addressList(p.Addresses(rfc822.FieldTo)),
		addressList(p.Addresses(rfc822.FieldCc)),
		addressList(p.Addresses(rfc822.FieldBcc)),
		quoteOrNIL(p.HeaderValue("In-Reply-To")),
		quoteOrNIL(p.HeaderValue("Message-ID")),
	)
}

// addressList renders a mailbox list as nested IMAP address
// structures, (name route mailbox host) each, NIL when empty. The
// route slot is historic and always NIL.
func addressList(addrs []*mail.Address) string {
	if len(addrs) == 0 {
		return "NIL"
	}
	var b strings.Builder
	b.WriteString("(")
	for _, a := range addrs {
		mailbox, host := a.Address, ""
		if at := strings.LastIndex(a.Address, "@"); at >= 0 {
			mailbox, host = a.Address[:at], a.Address[at+1:]
		}
		fmt.Fprintf(&b, "(%s NIL %s %s)",
			quoteOrNIL(a.Name), quoteOrNIL(mailbox), quoteOrNIL(host))
	}
	b.WriteString(")")
	return b.String()
}
