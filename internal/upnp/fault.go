package upnp

import "fmt"

// UPnP error codes from spec.md §7's fault table.
const (
	errInvalidAction      = 401
	errInvalidArgs        = 402
	errArgumentValue      = 600
	errArgumentOutOfRange = 601
	errNoSuchObject       = 701
)

// soapFault renders a <s:Fault> envelope per spec.md §7's exact format.
func soapFault(code int, description string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
<s:Body>
<s:Fault>
<faultcode>s:Client</faultcode>
<faultstring>UPnPError</faultstring>
<detail>
<UPnPError xmlns="urn:schemas-upnp-org:control-1-0">
<errorCode>%d</errorCode>
<errorDescription>%s</errorDescription>
</UPnPError>
</detail>
</s:Fault>
</s:Body>
</s:Envelope>`, code, description)
}
