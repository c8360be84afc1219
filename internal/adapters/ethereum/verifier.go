package ethereum

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"gaterepo/internal/domain"
)

// challengeTemplate is the fixed message the client signs. The claimed
// address is interpolated verbatim, in whatever case the client supplied.
const challengeTemplate = "GateRepo: Verifying my address is %s"

type signatureVerifier struct{}

// NewSignatureVerifier returns an AddressVerifier that recovers the signer of
// the challenge message via EIP-191 personal-sign recovery and compares it to
// the claimed address case-insensitively. All failures, including malformed
// input, surface as domain.ErrInvalidSignature; parser details never leak.
func NewSignatureVerifier() domain.AddressVerifier {
	return signatureVerifier{}
}

func (signatureVerifier) Verify(address, signature string) error {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return domain.ErrInvalidSignature
	}

	// Wallets produce V as 27/28; go-ethereum expects 0/1.
	recSig := make([]byte, crypto.SignatureLength)
	copy(recSig, sig)
	if recSig[crypto.RecoveryIDOffset] >= 27 {
		recSig[crypto.RecoveryIDOffset] -= 27
	}

	digest := accounts.TextHash([]byte(fmt.Sprintf(challengeTemplate, address)))
	pub, err := crypto.SigToPub(digest, recSig)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), address) {
		return domain.ErrInvalidSignature
	}
	return nil
}
