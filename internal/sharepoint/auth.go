package sharepoint

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultSTSURL is the SharePoint Online security token service.
const DefaultSTSURL = "https://login.microsoftonline.com/extSTS.srf"

// stsEnvelope is the RequestSecurityToken body sent to the STS. The token
// it returns is redeemed at the site's signin endpoint for FedAuth cookies.
const stsEnvelope = `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"
    xmlns:a="http://www.w3.org/2005/08/addressing"
    xmlns:u="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd">
  <s:Header>
    <a:Action s:mustUnderstand="1">http://schemas.xmlsoap.org/ws/2005/02/trust/RST/Issue</a:Action>
    <a:ReplyTo><a:Address>http://www.w3.org/2005/08/addressing/anonymous</a:Address></a:ReplyTo>
    <a:To s:mustUnderstand="1">%s</a:To>
    <o:Security s:mustUnderstand="1" xmlns:o="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd">
      <o:UsernameToken>
        <o:Username>%s</o:Username>
        <o:Password>%s</o:Password>
      </o:UsernameToken>
    </o:Security>
  </s:Header>
  <s:Body>
    <t:RequestSecurityToken xmlns:t="http://schemas.xmlsoap.org/ws/2005/02/trust">
      <wsp:AppliesTo xmlns:wsp="http://schemas.xmlsoap.org/ws/2004/09/policy">
        <a:EndpointReference><a:Address>%s</a:Address></a:EndpointReference>
      </wsp:AppliesTo>
      <t:KeyType>http://schemas.xmlsoap.org/ws/2005/05/identity/NoProofKey</t:KeyType>
      <t:RequestType>http://schemas.xmlsoap.org/ws/2005/02/trust/Issue</t:RequestType>
      <t:TokenType>urn:oasis:names:tc:SAML:1.0:assertion</t:TokenType>
    </t:RequestSecurityToken>
  </s:Body>
</s:Envelope>`

// requestToken posts a security token request to the STS and returns the
// binary security token for the site.
func (c *Client) requestToken(ctx context.Context) (string, error) {
	body := fmt.Sprintf(stsEnvelope,
		xmlEscape(c.stsURL), xmlEscape(c.username), xmlEscape(c.password), xmlEscape(c.siteURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.stsURL, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	token, stsErr := parseTokenResponse(data)
	if stsErr != "" {
		return "", fmt.Errorf("authentication rejected: %s", stsErr)
	}
	if token == "" {
		return "", fmt.Errorf("token response contained no security token (status %s)", resp.Status)
	}
	return token, nil
}

// parseTokenResponse scans the STS response for a BinarySecurityToken, or
// the fault text when authentication failed.
func parseTokenResponse(data []byte) (token, stsErr string) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var current string
	for {
		tok, err := dec.Token()
		if err != nil {
			return token, stsErr
		}
		switch el := tok.(type) {
		case xml.StartElement:
			current = strings.ToLower(el.Name.Local)
		case xml.CharData:
			switch current {
			case "binarysecuritytoken":
				token = string(el)
			case "text", "internalerror":
				if s := strings.TrimSpace(string(el)); s != "" {
					stsErr = s
				}
			}
		case xml.EndElement:
			current = ""
		}
	}
}

// signIn redeems the security token at the site's legacy signin endpoint.
// The FedAuth and rtFa cookies it sets are captured by the client's jar.
func (c *Client) signIn(ctx context.Context, token string) error {
	signinURL := c.origin + "/_forms/default.aspx?wa=wsignin1.0"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signinURL, strings.NewReader(token))
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("signin request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("signin failed: %s", resp.Status)
	}
	if !c.hasAuthCookie() {
		return fmt.Errorf("signin succeeded but no FedAuth cookie was set")
	}
	return nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}
