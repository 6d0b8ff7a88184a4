package sm2

import (
	"gmsuite/field"
	"gmsuite/sm3"
	"gmsuite/util"
)

// DefaultID is the identifier GM/T 0003.2 uses when a caller doesn't
// supply one: the ASCII string "1234567812345678" (16 bytes).
const DefaultID = "1234567812345678"

// ZValue computes Z = SM3(ENTL || ID || a || b || Gx || Gy || Px || Py),
// the binding of a user identifier to a public key that GM/T 0003.2
// requires prefixing to every message before signing. ENTL is the
// 16-bit big-endian bit length of id.
func ZValue(id string, pub Point) [sm3.Size]byte {
	if id == "" {
		id = DefaultID
	}
	idBytes := util.UTF8ToBytes(id)
	entl := util.PutUint16BE(uint16(len(idBytes) * 8))

	px, py := pub.Affine()

	data := util.Concat(
		entl,
		idBytes,
		curveA.ToBytes(field.Width),
		curveB.ToBytes(field.Width),
		Fp.Create(gxBig).ToBytes(field.Width),
		Fp.Create(gyBig).ToBytes(field.Width),
		px.ToBytes(field.Width),
		py.ToBytes(field.Width),
	)
	return sm3.Sum256(data)
}
