package mdns

// Canned response captures, ported byte-for-byte from fixtures recorded
// against real devices. Used by the test suite and, when
// RuntimeContext.TestMode is set, substituted for a live socket read by
// Discover so the full parse path runs without a network.

// testResponseIPv4 resolves to a device named "Chromecast-2b63970hbc22h26b6b2a0492825db8d2",
// friendly name "Den TV", id "63970hbc22h26b6b2a0492825db8d2f4", SRV port 0x1F49 (8009),
// with an A additional record for "10.12.1.141".
var testResponseIPv4 = []byte{
	0xFE, 0xED, 0x84, 0x00, 0x00, 0x00, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x03, 0x0B, 0x5F, 0x67, 0x6F,
	0x6F, 0x67, 0x6C, 0x65, 0x63, 0x61, 0x73, 0x74,
	0x04, 0x5F, 0x74, 0x63, 0x70, 0x05, 0x6C, 0x6F,
	0x63, 0x61, 0x6C, 0x00, 0x00, 0x0C, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x78, 0x00, 0x2E, 0x2B, 0x43,
	0x68, 0x72, 0x6F, 0x6D, 0x65, 0x63, 0x61, 0x73,
	0x74, 0x2D, 0x32, 0x62, 0x36, 0x33, 0x39, 0x37,
	0x30, 0x68, 0x62, 0x63, 0x32, 0x32, 0x68, 0x32,
	0x36, 0x62, 0x36, 0x62, 0x32, 0x61, 0x30, 0x34,
	0x39, 0x32, 0x38, 0x32, 0x35, 0x64, 0x62, 0x38,
	0x64, 0x32, 0xC0, 0x0C, 0xC0, 0x2E, 0x00, 0x10,
	0x80, 0x01, 0x00, 0x00, 0x11, 0x94, 0x00, 0xB3,
	0x23, 0x69, 0x64, 0x3D, 0x36, 0x33, 0x39, 0x37,
	0x30, 0x68, 0x62, 0x63, 0x32, 0x32, 0x68, 0x32,
	0x36, 0x62, 0x36, 0x62, 0x32, 0x61, 0x30, 0x34,
	0x39, 0x32, 0x38, 0x32, 0x35, 0x64, 0x62, 0x38,
	0x64, 0x32, 0x66, 0x34, 0x23, 0x63, 0x64, 0x3d,
	0x43, 0x42, 0x33, 0x30, 0x31, 0x31, 0x41, 0x35,
	0x34, 0x46, 0x46, 0x46, 0x46, 0x34, 0x46, 0x36,
	0x41, 0x45, 0x41, 0x30, 0x44, 0x37, 0x43, 0x39,
	0x43, 0x36, 0x42, 0x46, 0x44, 0x41, 0x37, 0x44,
	0x13, 0x72, 0x6D, 0x3D, 0x46, 0x38, 0x43, 0x41,
	0x46, 0x42, 0x39, 0x37, 0x41, 0x46, 0x41, 0x33,
	0x36, 0x31, 0x30, 0x46, 0x05, 0x76, 0x65, 0x3D,
	0x30, 0x35, 0x0D, 0x6D, 0x64, 0x3D, 0x43, 0x68,
	0x72, 0x6F, 0x6D, 0x65, 0x63, 0x61, 0x73, 0x74,
	0x12, 0x69, 0x63, 0x3D, 0x2F, 0x73, 0x65, 0x74,
	0x75, 0x70, 0x2F, 0x69, 0x63, 0x6F, 0x6E, 0x2E,
	0x70, 0x6E, 0x67, 0x09, 0x66, 0x6E, 0x3D, 0x44,
	0x65, 0x6E, 0x20, 0x54, 0x56, 0x07, 0x63, 0x61,
	0x3D, 0x34, 0x31, 0x30, 0x31, 0x04, 0x73, 0x74,
	0x3D, 0x30, 0x0F, 0x62, 0x73, 0x3D, 0x46, 0x41,
	0x38, 0x46, 0x43, 0x41, 0x39, 0x32, 0x31, 0x30,
	0x41, 0x32, 0x04, 0x6E, 0x66, 0x3D, 0x31, 0x03,
	0x72, 0x73, 0x3D, 0xC0, 0x2E, 0x00, 0x21, 0x80,
	0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x2D, 0x00,
	0x00, 0x00, 0x00, 0x1F, 0x49, 0x24, 0x30, 0x35,
	0x34, 0x32, 0x37, 0x39, 0x30, 0x66, 0x2D, 0x61,
	0x66, 0x30, 0x36, 0x2D, 0x66, 0x38, 0x36, 0x61,
	0x2D, 0x31, 0x66, 0x31, 0x62, 0x2D, 0x36, 0x34,
	0x38, 0x39, 0x38, 0x30, 0x39, 0x30, 0x66, 0x39,
	0x66, 0x34, 0xC0, 0x1D, 0xC1, 0x2D, 0x00, 0x01,
	0x80, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x04,
	0x0A, 0x0C, 0x01, 0x8D,
}

// testResponseIPv4Addr is the simulated UDP source address for testResponseIPv4.
const testResponseIPv4Addr = "10.11.12.13"

// testResponseIPv6 resolves to friendly name "TST Chrome Panel", model
// "Chromecast Ultra", with an AAAA additional record for "2016:cd8:4567:2cd0::12".
var testResponseIPv6 = []byte{
	0xFE, 0xED, 0x84, 0x00, 0x00, 0x00, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x04, 0x0B, 0x5F, 0x67, 0x6F,
	0x6F, 0x67, 0x6C, 0x65, 0x63, 0x61, 0x73, 0x74,
	0x04, 0x5F, 0x74, 0x63, 0x70, 0x05, 0x6C, 0x6F,
	0x63, 0x61, 0x6C, 0x00, 0x00, 0x0C, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x78, 0x00, 0x2E, 0x2B, 0x43,
	0x68, 0x72, 0x6F, 0x6D, 0x65, 0x63, 0x61, 0x73,
	0x74, 0x2D, 0x36, 0x62, 0x30, 0x68, 0x33, 0x62,
	0x32, 0x36, 0x30, 0x32, 0x33, 0x64, 0x32, 0x33,
	0x32, 0x65, 0x30, 0x37, 0x32, 0x61, 0x32, 0x62,
	0x65, 0x32, 0x38, 0x61, 0x32, 0x34, 0x62, 0x37,
	0x62, 0x37, 0xC0, 0x0C, 0xC0, 0x2E, 0x00, 0x10,
	0x80, 0x01, 0x00, 0x00, 0x11, 0x94, 0x00, 0xC3,
	0x23, 0x69, 0x64, 0x3D, 0x36, 0x62, 0x30, 0x68,
	0x33, 0x62, 0x32, 0x36, 0x30, 0x32, 0x33, 0x64,
	0x32, 0x33, 0x32, 0x65, 0x30, 0x37, 0x32, 0x61,
	0x32, 0x62, 0x65, 0x32, 0x38, 0x61, 0x32, 0x34,
	0x62, 0x37, 0x62, 0x37, 0x23, 0x63, 0x64, 0x3D,
	0x43, 0x34, 0x45, 0x32, 0x41, 0x41, 0x37, 0x42,
	0x41, 0x43, 0x33, 0x44, 0x41, 0x30, 0x41, 0x30,
	0x39, 0x37, 0x38, 0x37, 0x44, 0x34, 0x45, 0x44,
	0x36, 0x32, 0x30, 0x35, 0x35, 0x44, 0x44, 0x37,
	0x13, 0x72, 0x6D, 0x3D, 0x37, 0x32, 0x32, 0x45,
	0x34, 0x31, 0x41, 0x36, 0x35, 0x30, 0x33, 0x36,
	0x34, 0x36, 0x43, 0x45, 0x05, 0x76, 0x65, 0x3D,
	0x30, 0x35, 0x13, 0x6D, 0x64, 0x3D, 0x43, 0x68,
	0x72, 0x6F, 0x6D, 0x65, 0x63, 0x61, 0x73, 0x74,
	0x20, 0x55, 0x6C, 0x74, 0x72, 0x61, 0x12, 0x69,
	0x63, 0x3D, 0x2F, 0x73, 0x65, 0x74, 0x75, 0x70,
	0x2F, 0x69, 0x63, 0x6F, 0x6E, 0x2E, 0x70, 0x6E,
	0x67, 0x13, 0x66, 0x6E, 0x3D, 0x54, 0x53, 0x54,
	0x20, 0x43, 0x68, 0x72, 0x6F, 0x6D, 0x65, 0x20,
	0x50, 0x61, 0x6E, 0x65, 0x6C, 0x07, 0x63, 0x61,
	0x3D, 0x34, 0x31, 0x30, 0x31, 0x04, 0x73, 0x74,
	0x3D, 0x30, 0x0F, 0x62, 0x73, 0x3D, 0x46, 0x41,
	0x38, 0x46, 0x43, 0x41, 0x37, 0x38, 0x34, 0x35,
	0x41, 0x32, 0x04, 0x6E, 0x66, 0x3D, 0x31, 0x03,
	0x72, 0x73, 0x3D, 0xC0, 0x2E, 0x00, 0x21, 0x80,
	0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x2D, 0x00,
	0x00, 0x00, 0x00, 0x1F, 0x49, 0x24, 0x38, 0x32,
	0x32, 0x66, 0x36, 0x61, 0x34, 0x30, 0x2D, 0x34,
	0x32, 0x39, 0x38, 0x2D, 0x32, 0x32, 0x37, 0x63,
	0x2D, 0x32, 0x39, 0x39, 0x63, 0x2D, 0x30, 0x64,
	0x37, 0x34, 0x39, 0x33, 0x38, 0x32, 0x66, 0x39,
	0x64, 0x39, 0xC0, 0x1D, 0xC1, 0x37, 0x00, 0x01,
	0x80, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x04,
	0x0A, 0x0C, 0x01, 0x74, 0xC1, 0x37, 0x00, 0x1C,
	0x80, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x10,
	0x20, 0x16, 0x0C, 0xD8, 0x45, 0x67, 0x2C, 0xD0,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x12,
}

// testResponseIPv6Addr is the simulated UDP source address for testResponseIPv6.
const testResponseIPv6Addr = "2016:cd8:4567:2cd0::12"
