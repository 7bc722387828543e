package engine

// Kind identifies which assessor set an assessment runs.
type Kind int

const (
	KindUnspecified Kind = iota
	KindLogin
	KindTransaction
)

// String returns the lowercase kind name (used for audit storage).
func (k Kind) String() string {
	switch k {
	case KindLogin:
		return "login"
	case KindTransaction:
		return "transaction"
	default:
		return "unspecified"
	}
}

// Factor names a single risk signal. The set of factors per kind is fixed:
// login assessments carry exactly {location, device, velocity, timing},
// transaction assessments exactly {amount, frequency, behavioral}.
type Factor int

const (
	FactorUnspecified Factor = iota
	FactorLocation
	FactorDevice
	FactorVelocity
	FactorTiming
	FactorAmount
	FactorFrequency
	FactorBehavioral
)

// String returns the lowercase factor name (used for audit storage).
func (f Factor) String() string {
	switch f {
	case FactorLocation:
		return "location"
	case FactorDevice:
		return "device"
	case FactorVelocity:
		return "velocity"
	case FactorTiming:
		return "timing"
	case FactorAmount:
		return "amount"
	case FactorFrequency:
		return "frequency"
	case FactorBehavioral:
		return "behavioral"
	default:
		return "unspecified"
	}
}

// User is the caller-supplied view of the account being assessed. The
// platform's auth service owns user storage; the engine only needs the id
// and the registered device fingerprints.
type User struct {
	ID                 string
	DeviceFingerprints []string
}

// HasFingerprint reports whether fp is among the user's registered devices.
func (u User) HasFingerprint(fp string) bool {
	for _, known := range u.DeviceFingerprints {
		if known == fp {
			return true
		}
	}
	return false
}

// RiskContext carries the per-request signals the caller extracted from the
// incoming connection. It lives for one assessment and is embedded into the
// audit record, never persisted on its own.
type RiskContext struct {
	IPAddress         string
	UserAgent         string
	DeviceFingerprint string
	Location          string // optional coarse label; empty means not supplied
}

// TransactionPayload is the slice of a payment or loan application the
// transaction assessors look at.
type TransactionPayload struct {
	Amount        float64
	PaymentMethod string // e.g. "bank_transfer", "card"; empty for loan applications
}

// LoginFactors is the closed factor set of a login assessment.
// One field per factor so a missing or misspelled factor is a compile
// error, not a silently defaulted map read.
type LoginFactors struct {
	Location float64 `json:"location"`
	Device   float64 `json:"device"`
	Velocity float64 `json:"velocity"`
	Timing   float64 `json:"timing"`
}

// Mean returns the unweighted arithmetic mean of the four factors.
func (f LoginFactors) Mean() float64 {
	return (f.Location + f.Device + f.Velocity + f.Timing) / 4
}

// TransactionFactors is the closed factor set of a transaction assessment.
type TransactionFactors struct {
	Amount     float64 `json:"amount"`
	Frequency  float64 `json:"frequency"`
	Behavioral float64 `json:"behavioral"`
}

// Mean returns the unweighted arithmetic mean of the three factors.
func (f TransactionFactors) Mean() float64 {
	return (f.Amount + f.Frequency + f.Behavioral) / 3
}
