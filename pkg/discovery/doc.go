// Package discovery announces a UPnP device on the local network.
//
// Two advertisers are provided:
//
// # SSDP (239.255.255.250:1900)
//
// SSDPAdvertiser multicasts NOTIFY messages, the discovery mechanism UPnP
// control points listen for. One alive/byebye pair is sent per notification
// type: upnp:rootdevice, the device UDN, the device type and every service
// type. CACHE-CONTROL max-age carries the advertisement interval.
//
// # DNS-SD (_upnp-ms._tcp)
//
// MDNSAdvertiser registers the device as a DNS-SD service so zeroconf-aware
// clients can find the description document. TXT records include:
// udn (device UDN), loc (description URL) and name (friendly name).
//
// Both implement Advertiser; MultiAdvertiser fans out to several of them.
package discovery
