package console

import (
	"fmt"
	"strconv"
	"strings"

	"shoplist/internal/model"
)

type inputKind int

const (
	inputNone inputKind = iota
	inputText
	inputPress
	inputSwitchUser
	inputQuit
)

type input struct {
	kind    inputKind
	text    string
	message model.MessageID
	button  int
	user    User
}

// parseInput reads one line typed at the prompt. Lines starting with a console
// command are handled locally; everything else (bot commands included) is sent as a
// chat message.
func parseInput(line string) (input, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return input{kind: inputNone}, nil
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/q":
		return input{kind: inputQuit}, nil
	case "/press", "/p":
		if len(fields) != 3 {
			return input{}, fmt.Errorf("usage: /press <message#> <button#>")
		}
		msg, err := strconv.Atoi(strings.TrimPrefix(fields[1], "#"))
		if err != nil || msg <= 0 {
			return input{}, fmt.Errorf("bad message number %q", fields[1])
		}
		btn, err := strconv.Atoi(fields[2])
		if err != nil || btn <= 0 {
			return input{}, fmt.Errorf("bad button number %q", fields[2])
		}
		return input{kind: inputPress, message: model.MessageID(msg), button: btn}, nil
	case "/as":
		if len(fields) < 2 {
			return input{}, fmt.Errorf("usage: /as <user-id> [name]")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || id <= 0 {
			return input{}, fmt.Errorf("bad user id %q", fields[1])
		}
		name := "user" + fields[1]
		if len(fields) > 2 {
			name = strings.Join(fields[2:], " ")
		}
		return input{kind: inputSwitchUser, user: User{ID: model.UserID(id), Name: name}}, nil
	}
	return input{kind: inputText, text: line}, nil
}
