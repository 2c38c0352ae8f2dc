// Package udp sends line protocol to an InfluxDB UDP listener.
//
// Each Client.Write binds a fresh local socket, sends a single datagram and
// closes it, so concurrent writes never share a socket. Callers sending at
// high rate can Open a Socket once and reuse it.
//
// Only local failures are observable: binding the socket or handing the
// datagram to the kernel. Whether the listener received or stored the
// points is unknown to the sender.
package udp
