// Firma XMLDSig enveloped (XAdES-BES) de la declaración de valor con el
// certificado del profesional. La firma se agrega como último hijo de la raíz.

package xmldoc

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/beevik/etree"
	"golang.org/x/crypto/pkcs12"

	"github.com/jhoicas/valoracion-api/internal/application/report"
)

// Namespaces y algoritmos XMLDSig / XAdES.
const (
	NamespaceDS        = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceXAdES     = "http://uri.etsi.org/01903/v1.3.2#"
	AlgC14N            = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA256       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgSHA256          = "http://www.w3.org/2001/04/xmlenc#sha256"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

var _ report.DeclarationSigner = (*Signer)(nil)

// Signer firma documentos con un certificado RSA.
type Signer struct {
	priv *rsa.PrivateKey
	leaf *x509.Certificate
	now  func() time.Time
}

// NewSigner valida que el certificado traiga llave privada RSA.
func NewSigner(cert tls.Certificate) (*Signer, error) {
	priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("firma: el certificado debe incluir llave privada RSA")
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("firma: certificado vacío")
	}
	leaf := cert.Leaf
	if leaf == nil {
		var err error
		if leaf, err = x509.ParseCertificate(cert.Certificate[0]); err != nil {
			return nil, fmt.Errorf("firma: parsear certificado: %w", err)
		}
	}
	return &Signer{priv: priv, leaf: leaf, now: time.Now}, nil
}

// LoadP12 carga certificado y llave desde un .p12/.pfx. El password puede ser vacío.
func LoadP12(path, password string) (*Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("firma: leer p12: %w", err)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, fmt.Errorf("firma: decodificar p12: %w", err)
	}
	return NewSigner(tls.Certificate{Certificate: [][]byte{cert.Raw}, PrivateKey: priv, Leaf: cert})
}

// LoadPEM carga certificado y llave PEM (keyPath vacío: ambos en el mismo archivo).
func LoadPEM(certPath, keyPath string) (*Signer, error) {
	if keyPath == "" {
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("firma: cargar PEM: %w", err)
	}
	return NewSigner(cert)
}

// WithClock reemplaza el reloj (tests).
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Subject CN del certificado, para logs.
func (s *Signer) Subject() string { return s.leaf.Subject.CommonName }

// Sign devuelve el documento con <ds:Signature> al final de la raíz.
func (s *Signer) Sign(xmlBytes []byte) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("firma: XML vacío")
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("firma: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("firma: documento sin raíz")
	}

	// 1) Digest del documento completo (Reference URI="")
	canonicalDoc, err := Canonicalize(xmlBytes)
	if err != nil {
		return nil, fmt.Errorf("firma: canonizar documento: %w", err)
	}
	docDigest := sha256.Sum256(canonicalDoc)

	// 2) SignedInfo con los namespaces que hereda dentro del documento, así su
	//    forma canónica aislada coincide con la forma canónica en contexto.
	signedInfo := buildSignedInfo(root.SelectAttrValue("xmlns", ""), base64.StdEncoding.EncodeToString(docDigest[:]))
	canonicalSI, err := Canonicalize([]byte(signedInfo))
	if err != nil {
		return nil, fmt.Errorf("firma: canonizar SignedInfo: %w", err)
	}
	siHash := sha256.Sum256(canonicalSI)
	sigValue, err := rsa.SignPKCS1v15(nil, s.priv, crypto.SHA256, siHash[:])
	if err != nil {
		return nil, fmt.Errorf("firma: firmar SignedInfo: %w", err)
	}

	// 3) Signature completa con KeyInfo y propiedades XAdES
	certDigest := sha256.Sum256(s.leaf.Raw)
	signature := buildSignature(signedInfo,
		base64.StdEncoding.EncodeToString(sigValue),
		base64.StdEncoding.EncodeToString(s.leaf.Raw),
		s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		base64.StdEncoding.EncodeToString(certDigest[:]),
		s.leaf.Issuer.String(),
		s.leaf.SerialNumber.String(),
	)
	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signature); err != nil {
		return nil, fmt.Errorf("firma: parsear Signature: %w", err)
	}
	root.AddChild(sigDoc.Root())

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("firma: serializar: %w", err)
	}
	return out.Bytes(), nil
}

func buildSignedInfo(defaultNS, docDigestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo`)
	if defaultNS != "" {
		sb.WriteString(` xmlns="` + defaultNS + `"`)
	}
	sb.WriteString(` xmlns:ds="` + NamespaceDS + `" xmlns:xades="` + NamespaceXAdES + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgC14N + `"></ds:CanonicalizationMethod>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + AlgRSASHA256 + `"></ds:SignatureMethod>`)
	sb.WriteString(`<ds:Reference URI="">`)
	sb.WriteString(`<ds:Transforms><ds:Transform Algorithm="` + TransformEnveloped + `"></ds:Transform>`)
	sb.WriteString(`<ds:Transform Algorithm="` + AlgC14N + `"></ds:Transform></ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"></ds:DigestMethod>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

func buildSignature(signedInfo, sigValueB64, certB64, signingTime, certDigestB64, issuer, serial string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `" xmlns:xades="` + NamespaceXAdES + `" Id="firma-profesional">`)
	sb.WriteString(signedInfo)
	sb.WriteString(`<ds:SignatureValue>` + sigValueB64 + `</ds:SignatureValue>`)
	sb.WriteString(`<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` + certB64 + `</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`)
	sb.WriteString(`<ds:Object><xades:QualifyingProperties Target="#firma-profesional">`)
	sb.WriteString(`<xades:SignedProperties><xades:SignedSignatureProperties>`)
	sb.WriteString(`<xades:SigningTime>` + signingTime + `</xades:SigningTime>`)
	sb.WriteString(`<xades:SigningCertificate><xades:Cert><xades:CertDigest>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"></ds:DigestMethod>`)
	sb.WriteString(`<ds:DigestValue>` + certDigestB64 + `</ds:DigestValue></xades:CertDigest>`)
	sb.WriteString(`<xades:IssuerSerial><ds:X509IssuerName>` + escapeXML(issuer) + `</ds:X509IssuerName>`)
	sb.WriteString(`<ds:X509SerialNumber>` + serial + `</ds:X509SerialNumber></xades:IssuerSerial>`)
	sb.WriteString(`</xades:Cert></xades:SigningCertificate>`)
	sb.WriteString(`</xades:SignedSignatureProperties></xades:SignedProperties>`)
	sb.WriteString(`</xades:QualifyingProperties></ds:Object>`)
	sb.WriteString(`</ds:Signature>`)
	return sb.String()
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
