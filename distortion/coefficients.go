package distortion

// Field names a single distortion coefficient.
type Field int

// The coefficient fields in their natural grouping.
const (
	K1 Field = iota
	K2
	K3
	K4
	K5
	K6
	P1
	P2
	P3
	P4
	S1
	S2
	S3
	S4
	Tx
	Ty
	numFields
)

var fieldNames = [numFields]string{
	"k1", "k2", "k3", "k4", "k5", "k6",
	"p1", "p2", "p3", "p4",
	"s1", "s2", "s3", "s4",
	"tx", "ty",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Coefficients holds every coefficient any convention can use. A convention only reads the fields it
// declares; the others stay 0.
type Coefficients struct {
	// Radial. K4..K6 are the rational denominator for OpenCV; K4 is the r⁸ term for Brown and Metashape.
	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
	K3 float64 `json:"k3"`
	K4 float64 `json:"k4"`
	K5 float64 `json:"k5"`
	K6 float64 `json:"k6"`
	// Tangential (decentering).
	P1 float64 `json:"p1"`
	P2 float64 `json:"p2"`
	P3 float64 `json:"p3"`
	P4 float64 `json:"p4"`
	// Thin prism.
	S1 float64 `json:"s1"`
	S2 float64 `json:"s2"`
	S3 float64 `json:"s3"`
	S4 float64 `json:"s4"`
	// Sensor tilt angles, in radians.
	Tx float64 `json:"tx"`
	Ty float64 `json:"ty"`
}

func (c *Coefficients) ref(f Field) *float64 {
	switch f {
	case K1:
		return &c.K1
	case K2:
		return &c.K2
	case K3:
		return &c.K3
	case K4:
		return &c.K4
	case K5:
		return &c.K5
	case K6:
		return &c.K6
	case P1:
		return &c.P1
	case P2:
		return &c.P2
	case P3:
		return &c.P3
	case P4:
		return &c.P4
	case S1:
		return &c.S1
	case S2:
		return &c.S2
	case S3:
		return &c.S3
	case S4:
		return &c.S4
	case Tx:
		return &c.Tx
	case Ty:
		return &c.Ty
	case numFields:
	}
	return nil
}

// Get returns the value of field f, or 0 for an unknown field.
func (c Coefficients) Get(f Field) float64 {
	if p := c.ref(f); p != nil {
		return *p
	}
	return 0
}

// Set assigns v to field f. Unknown fields are ignored.
func (c *Coefficients) Set(f Field, v float64) {
	if p := c.ref(f); p != nil {
		*p = v
	}
}
