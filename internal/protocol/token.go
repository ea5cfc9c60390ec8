package protocol

import (
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

// Control literals as they appear on the wire.
const (
	RematchLiteral  = "Play Again"
	CloseLiteral    = "Fun Times"
	CloseAckLiteral = "Closing"
)

type Kind int

const (
	KindIdentity Kind = iota
	KindMove
	KindRematch
	KindClose
	KindCloseAck
)

func (that Kind) String() string {
	switch that {
	case KindIdentity:
		return "identity"
	case KindMove:
		return "move"
	case KindRematch:
		return "rematch"
	case KindClose:
		return "close"
	case KindCloseAck:
		return "close-ack"
	default:
		return "unknown"
	}
}

// Token is one protocol message. Name is set for identities, Position for moves.
type Token struct {
	Kind     Kind
	Name     string
	Position int
}

func Move(position int) Token { return Token{Kind: KindMove, Position: position} }

func Identity(name string) Token { return Token{Kind: KindIdentity, Name: name} }

var (
	Rematch  = Token{Kind: KindRematch}
	Close    = Token{Kind: KindClose}
	CloseAck = Token{Kind: KindCloseAck}
)

var literals = map[string]Token{
	RematchLiteral:  Rematch,
	CloseLiteral:    Close,
	CloseAckLiteral: CloseAck,
}

func EncodeMove(position int) ([]byte, error) {
	if !entity.ValidPosition(position) {
		return nil, fmt.Errorf("%w: %d", apperror.ErrParse, position)
	}

	return []byte(strconv.Itoa(position)), nil
}

// DecodeMove accepts only an ASCII decimal integer in [1,9].
func DecodeMove(payload []byte) (int, error) {
	if !isDigits(payload) {
		return 0, fmt.Errorf("%w: %q", apperror.ErrParse, payload)
	}

	position, err := strconv.Atoi(string(payload))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrParse, payload)
	}

	if !entity.ValidPosition(position) {
		return 0, fmt.Errorf("%w: %d", apperror.ErrParse, position)
	}

	return position, nil
}

func EncodeIdentity(name string) ([]byte, error) {
	if err := ValidateIdentity(name); err != nil {
		return nil, err
	}

	return []byte(name), nil
}

// DecodeIdentity is used only during the handshake, where a numeric name is legal.
func DecodeIdentity(payload []byte) (string, error) {
	name := string(payload)
	if err := ValidateIdentity(name); err != nil {
		return "", err
	}

	return name, nil
}

func ValidateIdentity(name string) error {
	if name == "" {
		return apperror.ErrInvalidIdentity
	}

	for _, r := range name {
		isDigit := r >= '0' && r <= '9'
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isDigit && !isLetter {
			return fmt.Errorf("%w: %q", apperror.ErrInvalidIdentity, name)
		}
	}

	return nil
}

func Encode(token Token) ([]byte, error) {
	switch token.Kind {
	case KindIdentity:
		return EncodeIdentity(token.Name)
	case KindMove:
		return EncodeMove(token.Position)
	case KindRematch:
		return []byte(RematchLiteral), nil
	case KindClose:
		return []byte(CloseLiteral), nil
	case KindCloseAck:
		return []byte(CloseAckLiteral), nil
	default:
		return nil, fmt.Errorf("%w: kind %d", apperror.ErrUnknownToken, token.Kind)
	}
}

// Decode reads a move or a control token. Integer parsing is tried first:
// numeric payloads are moves (or ErrParse when out of range), anything else
// must be one of the control literals.
func Decode(payload []byte) (Token, error) {
	if isNumeric(payload) {
		position, err := DecodeMove(payload)
		if err != nil {
			return Token{}, err
		}

		return Move(position), nil
	}

	token, ok := literals[string(payload)]
	if !ok {
		return Token{}, fmt.Errorf("%w: %q", apperror.ErrUnknownToken, payload)
	}

	return token, nil
}

func isNumeric(payload []byte) bool {
	_, err := strconv.Atoi(string(payload))
	return err == nil
}

func isDigits(payload []byte) bool {
	if len(payload) == 0 {
		return false
	}

	for _, b := range payload {
		if b < '0' || b > '9' {
			return false
		}
	}

	return true
}
