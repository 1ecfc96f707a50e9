package flash

import "github.com/cristidbr/aircore"

func flashError(op string, code aircore.ErrorCode, msg string) *aircore.Error {
	return aircore.NewError(op, code, msg)
}

func segmentFullError() *aircore.Error {
	return flashError("flash.insertRecord", aircore.CodeSegmentFull, "record segment has no room left")
}

func checksumMismatchError(op string) *aircore.Error {
	return flashError(op, aircore.CodeChecksumMismatch, "sector checksum does not match its contents")
}

func ioError(op string, err error) *aircore.Error {
	return aircore.WrapError(op, err)
}
