package upnp

import "fmt"

// deviceDescription renders the root device description XML served at
// /upnp/device, describing the Content-Directory/Connection-Manager service
// pair this spec requires rather than the teacher's AVTransport-casting
// device.
func deviceDescription(uuid, friendlyName, baseURL string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
<specVersion>
<major>1</major>
<minor>0</minor>
</specVersion>
<device>
<deviceType>urn:schemas-upnp-org:device:MediaServer:1</deviceType>
<friendlyName>%s</friendlyName>
<manufacturer>EEMS</manufacturer>
<modelName>EEMS Media Server</modelName>
<UDN>uuid:%s</UDN>
<serviceList>
<service>
<serviceType>urn:schemas-upnp-org:service:ContentDirectory:1</serviceType>
<serviceId>urn:upnp-org:serviceId:ContentDirectory</serviceId>
<SCPDURL>/upnp/cds.xml</SCPDURL>
<controlURL>/upnp/cds</controlURL>
<eventSubURL></eventSubURL>
</service>
<service>
<serviceType>urn:schemas-upnp-org:service:ConnectionManager:1</serviceType>
<serviceId>urn:upnp-org:serviceId:ConnectionManager</serviceId>
<SCPDURL>/upnp/cm.xml</SCPDURL>
<controlURL>/upnp/cm</controlURL>
<eventSubURL></eventSubURL>
</service>
</serviceList>
</device>
</root>`, friendlyName, uuid)
}

const contentDirectorySCPD = `<?xml version="1.0" encoding="UTF-8"?>
<scpd xmlns="urn:schemas-upnp-org:service-1-0">
<specVersion>
<major>1</major>
<minor>0</minor>
</specVersion>
<actionList>
<action>
<name>Browse</name>
<argumentList>
<argument><name>ObjectID</name><direction>in</direction></argument>
<argument><name>BrowseFlag</name><direction>in</direction></argument>
<argument><name>Filter</name><direction>in</direction></argument>
<argument><name>StartingIndex</name><direction>in</direction></argument>
<argument><name>RequestedCount</name><direction>in</direction></argument>
<argument><name>SortCriteria</name><direction>in</direction></argument>
<argument><name>Result</name><direction>out</direction></argument>
<argument><name>NumberReturned</name><direction>out</direction></argument>
<argument><name>TotalMatches</name><direction>out</direction></argument>
<argument><name>UpdateID</name><direction>out</direction></argument>
</argumentList>
</action>
</actionList>
</scpd>`

const connectionManagerSCPD = `<?xml version="1.0" encoding="UTF-8"?>
<scpd xmlns="urn:schemas-upnp-org:service-1-0">
<specVersion>
<major>1</major>
<minor>0</minor>
</specVersion>
<actionList></actionList>
</scpd>`
