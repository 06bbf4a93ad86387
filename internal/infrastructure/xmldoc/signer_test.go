package xmldoc_test

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/internal/infrastructure/xmldoc"
)

func selfSigned(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(4242),
		Subject:      pkix.Name{CommonName: "Ana Gómez", Organization: []string{"Estudio Gómez & Asoc."}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return key, der
}

func TestSigner_FirmaVerificable(t *testing.T) {
	key, der := selfSigned(t)
	signer, err := xmldoc.NewSigner(tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key})
	require.NoError(t, err)
	signer.WithClock(func() time.Time { return time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC) })
	assert.Equal(t, "Ana Gómez", signer.Subject())

	decl, err := xmldoc.NewBuilder().Build(sampleData(t, "10200,00"))
	require.NoError(t, err)
	signed, err := signer.Sign(decl.XML)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(signed))
	root := doc.Root()
	sig := root.SelectElement("ds:Signature")
	require.NotNil(t, sig, "la firma va como hijo de la raíz")

	assert.Equal(t, "2026-03-10T15:04:05.000Z", sig.FindElement(".//SigningTime").Text())
	assert.Equal(t, base64.StdEncoding.EncodeToString(der), sig.FindElement(".//X509Certificate").Text())
	assert.Contains(t, sig.FindElement(".//X509IssuerName").Text(), "Estudio Gómez & Asoc.")
	assert.Equal(t, "4242", sig.FindElement(".//X509SerialNumber").Text())

	// SignatureValue sobre SignedInfo canonizado
	siDoc := etree.NewDocument()
	siDoc.SetRoot(sig.SelectElement("ds:SignedInfo").Copy())
	siBytes, err := siDoc.WriteToBytes()
	require.NoError(t, err)
	canonicalSI, err := xmldoc.Canonicalize(siBytes)
	require.NoError(t, err)
	sigValue, err := base64.StdEncoding.DecodeString(sig.SelectElement("ds:SignatureValue").Text())
	require.NoError(t, err)
	h := sha256.Sum256(canonicalSI)
	assert.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, h[:], sigValue))

	// DigestValue: documento sin la firma (transformación enveloped)
	digestValue := sig.FindElement(".//Reference/DigestValue").Text()
	root.RemoveChild(sig)
	unsigned, err := doc.WriteToBytes()
	require.NoError(t, err)
	canonicalDoc, err := xmldoc.Canonicalize(unsigned)
	require.NoError(t, err)
	d := sha256.Sum256(canonicalDoc)
	assert.Equal(t, base64.StdEncoding.EncodeToString(d[:]), digestValue)
}

func TestSigner_LoadPEM(t *testing.T) {
	key, der := selfSigned(t)
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}), 0o600))

	signer, err := xmldoc.LoadPEM(certPath, keyPath)
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", signer.Subject())

	_, err = xmldoc.LoadPEM(filepath.Join(dir, "no-existe.pem"), "")
	assert.Error(t, err)
}

func TestSigner_Errores(t *testing.T) {
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	_, err = xmldoc.NewSigner(tls.Certificate{Certificate: [][]byte{{0x30}}, PrivateKey: ecKey})
	assert.Error(t, err, "sólo RSA")

	_, err = xmldoc.LoadP12(filepath.Join(t.TempDir(), "firma.p12"), "")
	assert.Error(t, err)

	key, der := selfSigned(t)
	signer, err := xmldoc.NewSigner(tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key})
	require.NoError(t, err)
	_, err = signer.Sign(nil)
	assert.Error(t, err)
	_, err = signer.Sign([]byte("<sin-cerrar>"))
	assert.Error(t, err)
}
