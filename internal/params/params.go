package params

const (
	SecParam = 128
	SecBytes = SecParam / 8

	// BytesScalar is the size of a big-endian encoded scalar modulo the group order.
	BytesScalar = 32
	// BytesScalarWide is the amount of uniform bytes reduced into a single scalar,
	// so that the bias of the reduction is below 2⁻¹²⁸.
	BytesScalarWide = 2 * BytesScalar // = 64

	// BytesG1 and BytesG2 are the sizes of compressed points.
	BytesG1 = 48
	BytesG2 = 96

	// BytesParams = 6 G1 generators followed by 2 G2 generators.
	BytesParams = 6*BytesG1 + 2*BytesG2 // = 480

	// BytesProof = 3 G1 commitments followed by the challenge and 5 responses.
	BytesProof = 3*BytesG1 + 6*BytesScalar // = 336

	// BytesChallenge is the expected length of an external proof challenge.
	BytesChallenge = 2 * SecBytes // = 32
)
