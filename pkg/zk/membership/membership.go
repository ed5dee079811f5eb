// Package zkmembership proves knowledge of an accumulated identifier and of its
// witness, without revealing either.
//
// Given e(C, y⋅P₂ + W) = e(V, P₂), the prover blinds the witness as
// E_C = C + (σ + ρ)⋅Z₁ and commits to the blinding with T_σ = σ⋅X₁, T_ρ = ρ⋅Y₁.
// Writing δ_σ = y⋅σ and δ_ρ = y⋅ρ, the relation becomes
//
//	e(E_C, P₂)ʸ ⋅ e(Z₁, P₂)^-(δ_σ+δ_ρ) ⋅ e(Z₁, W)^-(σ+ρ) = e(V, P₂) / e(E_C, W)
//
// which is proven with a Schnorr protocol for (y, σ, ρ, δ_σ, δ_ρ), made
// non-interactive with a transcript binding the params, keys, accumulator and
// an external challenge.
package zkmembership

import (
	"bytes"
	"fmt"
	"io"

	"github.com/taurusgroup/allosaur/internal/hash"
	"github.com/taurusgroup/allosaur/internal/params"
	"github.com/taurusgroup/allosaur/pkg/accumulator"
	"github.com/taurusgroup/allosaur/pkg/math/curve"
	"github.com/taurusgroup/allosaur/pkg/math/sample"
)

const domain = "Accumulator Membership Proof"

type (
	Public struct {
		Params      *accumulator.Params
		Keys        *accumulator.PublicKeys
		Accumulator *accumulator.Accumulator
	}
	Private struct {
		// Witness C satisfies e(C, y⋅P₂ + W) = e(V, P₂)
		Witness *accumulator.MembershipWitness
		// Y is the accumulated identifier
		Y *accumulator.Element
	}
)

type Commitment struct {
	// EC = C + (σ + ρ)⋅Z₁
	EC *curve.G1
	// TSigma = σ⋅X₁, TRho = ρ⋅Y₁
	TSigma, TRho *curve.G1
}

type Proof struct {
	*Commitment
	// C is the Fiat–Shamir challenge
	C *curve.Scalar
	// S* = r* + c⋅w* for w* = y, σ, ρ, δ_σ, δ_ρ
	SY, SSigma, SRho, SDeltaSigma, SDeltaRho *curve.Scalar
}

// nonces are the Schnorr commitments, only ever written to the transcript.
type nonces struct {
	RSigma, RRho, RDeltaSigma, RDeltaRho *curve.G1
	RE                                   *curve.GT
}

// IsValid checks that the proof is well formed.
func (p *Proof) IsValid() bool {
	if p == nil || p.Commitment == nil {
		return false
	}
	for _, g := range []*curve.G1{p.EC, p.TSigma, p.TRho} {
		if g == nil || g.IsIdentity() {
			return false
		}
	}
	for _, s := range []*curve.Scalar{p.C, p.SY, p.SSigma, p.SRho, p.SDeltaSigma, p.SDeltaRho} {
		if s == nil {
			return false
		}
	}
	return true
}

// NewProof generates a proof that private.Witness certifies private.Y in public.Accumulator.
func NewProof(rand io.Reader, challenge []byte, public Public, private Private) *Proof {
	pp, w := public.Params, public.Keys.WitnessKey
	y := private.Y

	sigma, rho := sample.Scalar(rand), sample.Scalar(rand)
	deltaSigma := y.Clone().Mul(sigma)
	deltaRho := y.Clone().Mul(rho)

	commitment := &Commitment{
		EC:     sigma.Clone().Add(rho).Act(pp.Z1).Add(private.Witness.C),
		TSigma: sigma.Act(pp.X1),
		TRho:   rho.Act(pp.Y1),
	}

	rY, rSigma, rRho := sample.Scalar(rand), sample.Scalar(rand), sample.Scalar(rand)
	rDeltaSigma, rDeltaRho := sample.Scalar(rand), sample.Scalar(rand)

	n := &nonces{
		RSigma:      rSigma.Act(pp.X1),
		RRho:        rRho.Act(pp.Y1),
		RDeltaSigma: rY.Act(commitment.TSigma).Sub(rDeltaSigma.Act(pp.X1)),
		RDeltaRho:   rY.Act(commitment.TRho).Sub(rDeltaRho.Act(pp.Y1)),
		RE: curve.PairProduct(
			[]*curve.G1{commitment.EC, pp.Z1, pp.Z1},
			[]*curve.G2{pp.P2, pp.P2, w},
			[]*curve.Scalar{
				rY,
				rDeltaSigma.Clone().Add(rDeltaRho).Negate(),
				rSigma.Clone().Add(rRho).Negate(),
			},
		),
	}

	c := computeChallenge(challenge, public, commitment, n)
	respond := func(r, x *curve.Scalar) *curve.Scalar {
		return c.Clone().Mul(x).Add(r)
	}
	return &Proof{
		Commitment:  commitment,
		C:           c,
		SY:          respond(rY, y),
		SSigma:      respond(rSigma, sigma),
		SRho:        respond(rRho, rho),
		SDeltaSigma: respond(rDeltaSigma, deltaSigma),
		SDeltaRho:   respond(rDeltaRho, deltaRho),
	}
}

// Verify recomputes the nonces from the responses and accepts if they hash to p.C.
func (p *Proof) Verify(challenge []byte, public Public) bool {
	if !p.IsValid() {
		return false
	}
	if public.Params == nil || public.Keys == nil || public.Accumulator == nil || public.Accumulator.V == nil {
		return false
	}
	pp, w := public.Params, public.Keys.WitnessKey
	minusC := p.C.Clone().Negate()

	n := &nonces{
		RSigma:      p.SSigma.Act(pp.X1).Add(minusC.Act(p.TSigma)),
		RRho:        p.SRho.Act(pp.Y1).Add(minusC.Act(p.TRho)),
		RDeltaSigma: p.SY.Act(p.TSigma).Sub(p.SDeltaSigma.Act(pp.X1)),
		RDeltaRho:   p.SY.Act(p.TRho).Sub(p.SDeltaRho.Act(pp.Y1)),
		// the relation raised to the responses, divided by (e(V, P₂) / e(E_C, W))ᶜ
		RE: curve.PairProduct(
			[]*curve.G1{p.EC, pp.Z1, pp.Z1, public.Accumulator.V, p.EC},
			[]*curve.G2{pp.P2, pp.P2, w, pp.P2, w},
			[]*curve.Scalar{
				p.SY,
				p.SDeltaSigma.Clone().Add(p.SDeltaRho).Negate(),
				p.SSigma.Clone().Add(p.SRho).Negate(),
				minusC,
				p.C,
			},
		),
	}
	return computeChallenge(challenge, public, p.Commitment, n).Equal(p.C)
}

func computeChallenge(challenge []byte, public Public, commitment *Commitment, n *nonces) *curve.Scalar {
	h := hash.New(domain)
	_ = h.WriteAny(public.Params, public.Keys, public.Accumulator,
		commitment.EC, commitment.TSigma, commitment.TRho,
		n.RSigma, n.RRho, n.RDeltaSigma, n.RDeltaRho, n.RE,
		challenge)
	return sample.Scalar(h.Digest())
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The layout is E_C ‖ T_σ ‖ T_ρ ‖ c ‖ s_y ‖ s_σ ‖ s_ρ ‖ s_δσ ‖ s_δρ,
// params.BytesProof bytes in total.
func (p *Proof) MarshalBinary() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("zkmembership.Proof.Marshal: invalid proof")
	}
	buf := bytes.NewBuffer(make([]byte, 0, params.BytesProof))
	for _, g := range []*curve.G1{p.EC, p.TSigma, p.TRho} {
		if _, err := g.WriteTo(buf); err != nil {
			return nil, err
		}
	}
	for _, s := range []*curve.Scalar{p.C, p.SY, p.SSigma, p.SRho, p.SDeltaSigma, p.SDeltaRho} {
		if _, err := s.WriteTo(buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesProof {
		return fmt.Errorf("zkmembership.Proof.Unmarshal: expected %d bytes, got %d: %w", params.BytesProof, len(data), curve.ErrDecode)
	}
	points := make([]*curve.G1, 3)
	for i := range points {
		points[i] = new(curve.G1)
		if err := points[i].UnmarshalBinary(data[:params.BytesG1]); err != nil {
			return fmt.Errorf("zkmembership.Proof.Unmarshal: %w", err)
		}
		data = data[params.BytesG1:]
	}
	scalars := make([]*curve.Scalar, 6)
	for i := range scalars {
		scalars[i] = curve.NewScalar()
		if err := scalars[i].UnmarshalBinary(data[:params.BytesScalar]); err != nil {
			return fmt.Errorf("zkmembership.Proof.Unmarshal: %w", err)
		}
		data = data[params.BytesScalar:]
	}
	*p = Proof{
		Commitment:  &Commitment{EC: points[0], TSigma: points[1], TRho: points[2]},
		C:           scalars[0],
		SY:          scalars[1],
		SSigma:      scalars[2],
		SRho:        scalars[3],
		SDeltaSigma: scalars[4],
		SDeltaRho:   scalars[5],
	}
	return nil
}
