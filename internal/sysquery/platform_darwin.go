//go:build darwin && cgo

package sysquery

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Foundation -framework ApplicationServices
#import <Foundation/Foundation.h>
#import <ApplicationServices/ApplicationServices.h>
#include <stdlib.h>
#include <string.h>

typedef int CGSConnectionID;
extern CGSConnectionID _CGSDefaultConnection(void);
extern CFArrayRef CGSCopyManagedDisplaySpaces(CGSConnectionID cid);
extern CFStringRef CGSCopyActiveMenuBarDisplayIdentifier(CGSConnectionID cid);

#define MAX_DISPLAYS 16

static char *copyCString(CFStringRef s) {
	if (s == NULL) return NULL;
	CFIndex len = CFStringGetMaximumSizeForEncoding(CFStringGetLength(s), kCFStringEncodingUTF8) + 1;
	char *buf = malloc(len);
	if (!CFStringGetCString(s, buf, len, kCFStringEncodingUTF8)) {
		free(buf);
		return NULL;
	}
	return buf;
}

static char *managedDisplaySpacesJSON(void) {
	char *out = NULL;
	@autoreleasepool {
		CFArrayRef spaces = CGSCopyManagedDisplaySpaces(_CGSDefaultConnection());
		if (spaces == NULL) return NULL;
		NSArray *arr = (NSArray *)spaces;
		if ([NSJSONSerialization isValidJSONObject:arr]) {
			NSData *data = [NSJSONSerialization dataWithJSONObject:arr options:0 error:nil];
			if (data != nil) {
				out = malloc(data.length + 1);
				memcpy(out, data.bytes, data.length);
				out[data.length] = 0;
			}
		}
		CFRelease(spaces);
	}
	return out;
}

static char *activeDisplayIdentifier(void) {
	CFStringRef ident = CGSCopyActiveMenuBarDisplayIdentifier(_CGSDefaultConnection());
	if (ident == NULL) return NULL;
	char *out = copyCString(ident);
	CFRelease(ident);
	return out;
}

static int onlineDisplays(CGDirectDisplayID *ids) {
	uint32_t count = 0;
	if (CGGetOnlineDisplayList(MAX_DISPLAYS, ids, &count) != kCGErrorSuccess) return -1;
	return (int)count;
}

static char *displayUUID(CGDirectDisplayID id) {
	CFUUIDRef uuid = CGDisplayCreateUUIDFromDisplayID(id);
	if (uuid == NULL) return NULL;
	CFStringRef s = CFUUIDCreateString(NULL, uuid);
	CFRelease(uuid);
	char *out = copyCString(s);
	if (s != NULL) CFRelease(s);
	return out;
}
*/
import "C"

import (
	"bytes"
	"encoding/json"
	"unsafe"

	"github.com/lazywalker/YabaiIndicator/internal/models"
)

type darwinPlatform struct{}

// NativePlatform returns the window server bridge
func NativePlatform() Platform {
	return darwinPlatform{}
}

func (darwinPlatform) DisplayIDs() ([]uint64, bool) {
	var buf [C.MAX_DISPLAYS]C.CGDirectDisplayID
	n := int(C.onlineDisplays(&buf[0]))
	if n <= 0 {
		return nil, false
	}
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		ids[i] = uint64(buf[i])
	}
	return ids, true
}

func (darwinPlatform) DisplayInfo(id uint64) (DisplayInfo, bool) {
	did := C.CGDirectDisplayID(id)
	cuuid := C.displayUUID(did)
	if cuuid == nil {
		return DisplayInfo{}, false
	}
	defer C.free(unsafe.Pointer(cuuid))

	b := C.CGDisplayBounds(did)
	return DisplayInfo{
		UUID: C.GoString(cuuid),
		Bounds: models.Rect{
			X:      float64(b.origin.x),
			Y:      float64(b.origin.y),
			Width:  float64(b.size.width),
			Height: float64(b.size.height),
		},
		IsMain:   C.CGDisplayIsMain(did) != 0,
		IsActive: C.CGDisplayIsActive(did) != 0,
	}, true
}

func (darwinPlatform) ActiveDisplayUUID() (string, bool) {
	cs := C.activeDisplayIdentifier()
	if cs == nil {
		return "", false
	}
	defer C.free(unsafe.Pointer(cs))
	return C.GoString(cs), true
}

func (darwinPlatform) ManagedDisplaySpaces() (interface{}, bool) {
	cs := C.managedDisplaySpacesJSON()
	if cs == nil {
		return nil, false
	}
	defer C.free(unsafe.Pointer(cs))

	dec := json.NewDecoder(bytes.NewReader([]byte(C.GoString(cs))))
	dec.UseNumber()
	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, false
	}
	return tree, true
}
