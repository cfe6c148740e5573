package momento

import (
	"math"
	"strconv"
	"time"

	"github.com/pior/momento/internal/coarsetime"
)

// ExpiresIn is how long a generated token stays valid.
type ExpiresIn struct {
	seconds uint64
	never   bool
}

func ExpiresInSeconds(n uint64) ExpiresIn { return ExpiresIn{seconds: n} }
func ExpiresInMinutes(n uint64) ExpiresIn { return ExpiresIn{seconds: saturatingMul(n, 60)} }
func ExpiresInHours(n uint64) ExpiresIn   { return ExpiresIn{seconds: saturatingMul(n, 3600)} }
func ExpiresInDays(n uint64) ExpiresIn    { return ExpiresIn{seconds: saturatingMul(n, 86400)} }

// saturatingMul caps at math.MaxUint64 instead of wrapping.
func saturatingMul(n, unit uint64) uint64 {
	if n > math.MaxUint64/unit {
		return math.MaxUint64
	}
	return n * unit
}

// ExpiresInDuration rounds d down to the second.
func ExpiresInDuration(d time.Duration) ExpiresIn {
	if d < 0 {
		d = 0
	}
	return ExpiresIn{seconds: uint64(d / time.Second)}
}

// ExpiresNever is a token without expiry. Disposable tokens reject it.
func ExpiresNever() ExpiresIn { return ExpiresIn{never: true} }

// ExpiresInEpoch expires at the given unix time. A time in the past yields
// a zero validity, which the token service rejects.
func ExpiresInEpoch(epoch int64) ExpiresIn {
	now := coarsetime.Now().Unix()
	if epoch <= now {
		return ExpiresIn{}
	}
	return ExpiresIn{seconds: uint64(epoch - now)}
}

// DoesExpire is false only for ExpiresNever.
func (e ExpiresIn) DoesExpire() bool { return !e.never }

// Seconds returns the validity in seconds, 0 for ExpiresNever.
func (e ExpiresIn) Seconds() uint64 {
	if e.never {
		return 0
	}
	return e.seconds
}

func (e ExpiresIn) String() string {
	if e.never {
		return "never"
	}
	if e.seconds > uint64(math.MaxInt64/int64(time.Second)) {
		return strconv.FormatUint(e.seconds, 10) + "s"
	}
	return (time.Duration(e.seconds) * time.Second).String()
}
