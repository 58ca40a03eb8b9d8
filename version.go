package airband

// Version is the library release, stamped at tag time.
const Version = "0.1.0"
