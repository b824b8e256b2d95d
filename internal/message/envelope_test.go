package message

import (
	"strings"
	"testing"
)

func TestBuildEnvelope(t *testing.T) {
	root := mustParse(t, `Date: Tue, 03 Mar 2020 10:00:00 +0000
Subject: Greetings
From: Alice <alice@example.com>
To: bob@example.com, Carol <carol@example.com>
Message-ID: <m1@example.com>

body
`)
	got := BuildEnvelope(root)
	want := `ENVELOPE ("Tue, 03 Mar 2020 10:00:00 +0000" "Greetings" ` +
		`(("Alice" NIL "alice" "example.com")) ` +
		`(("Alice" NIL "alice" "example.com")) ` +
		`(("Alice" NIL "alice" "example.com")) ` +
		`((NIL NIL "bob" "example.com")("Carol" NIL "carol" "example.com")) ` +
		`NIL NIL NIL "<m1@example.com>")`
	if got != want {
		t.Errorf("Unexpected envelope:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestBuildEnvelopeExplicitSenderAndReplyTo(t *testing.T) {
	root := mustParse(t, `From: alice@example.com
Sender: relay@example.com
Reply-To: replies@example.com

body
`)
	got := BuildEnvelope(root)
	if !strings.Contains(got, `((NIL NIL "relay" "example.com"))`) {
		t.Errorf("Sender not kept: %s", got)
	}
	if !strings.Contains(got, `((NIL NIL "replies" "example.com"))`) {
		t.Errorf("Reply-To not kept: %s", got)
	}
}

func TestBuildEnvelopeEmptyMessage(t *testing.T) {
	root := mustParse(t, `X-Nothing: here

body
`)
	got := BuildEnvelope(root)
	want := "ENVELOPE (NIL NIL NIL NIL NIL NIL NIL NIL NIL NIL)"
	if got != want {
		t.Errorf("Unexpected envelope: %s", got)
	}
}
