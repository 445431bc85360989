package route

// Native is the rt_msghdr layout of the running platform.
var Native = LayoutDarwin
