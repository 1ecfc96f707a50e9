package wsstream

import "github.com/cristidbr/aircore"

func invalidFrameError(op, msg string) *aircore.Error {
	return aircore.NewError(op, aircore.CodeInvalidFrame, msg)
}

func frameTooLargeError(op string) *aircore.Error {
	return aircore.NewError(op, aircore.CodeFrameTooLarge, "payload exceeds maximum frame size")
}
