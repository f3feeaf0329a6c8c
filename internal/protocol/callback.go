// Package protocol builds and parses the application's x-callback-url
// links, which open a note, notebook or tag from outside the application.
package protocol

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// CallbackURLPrefix starts every callback URL.
const CallbackURLPrefix = "joplin://x-callback-url/"

// ErrInvalidCallbackURL is returned when parsing a string that is not a
// callback URL.
var ErrInvalidCallbackURL = errors.New("invalid callback url")

// Command is the action encoded in a callback URL.
type Command string

// Supported commands.
const (
	CommandOpenNote   Command = "openNote"
	CommandOpenFolder Command = "openFolder"
	CommandOpenTag    Command = "openTag"
)

// CallbackURLInfo is the parsed form of a callback URL.
type CallbackURLInfo struct {
	Command Command
	Params  map[string]string
}

// IsCallbackURL reports whether s is a callback URL.
func IsCallbackURL(s string) bool {
	return strings.HasPrefix(s, CallbackURLPrefix)
}

// NoteURL returns the callback URL that opens the given note.
func NoteURL(noteID string) string {
	return callbackURL(CommandOpenNote, noteID)
}

// FolderURL returns the callback URL that opens the given notebook.
func FolderURL(folderID string) string {
	return callbackURL(CommandOpenFolder, folderID)
}

// TagURL returns the callback URL that opens the given tag.
func TagURL(tagID string) string {
	return callbackURL(CommandOpenTag, tagID)
}

func callbackURL(cmd Command, id string) string {
	return CallbackURLPrefix + string(cmd) + "?id=" + url.QueryEscape(id)
}

// ParseCallbackURL extracts the command and query parameters of a
// callback URL. When a parameter is repeated, the last value wins.
func ParseCallbackURL(s string) (*CallbackURLInfo, error) {
	if !IsCallbackURL(s) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCallbackURL, s)
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallbackURL, err)
	}

	params := make(map[string]string)
	for key, values := range u.Query() {
		params[key] = values[len(values)-1]
	}

	return &CallbackURLInfo{
		Command: Command(u.Path[strings.LastIndex(u.Path, "/")+1:]),
		Params:  params,
	}, nil
}
