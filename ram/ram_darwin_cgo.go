// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin && cgo

package ram

/*
#include <mach/mach.h>
#include <mach/mach_host.h>
#include <sys/sysctl.h>

static kern_return_t vm_stats(vm_statistics64_t stat) {
	mach_msg_type_number_t count = HOST_VM_INFO64_COUNT;
	mach_port_t host = mach_host_self();
	kern_return_t ret = host_statistics64(host, HOST_VM_INFO64, (host_info64_t)stat, &count);
	mach_port_deallocate(mach_task_self(), host);
	return ret;
}

static uint64_t hw_memsize() {
	uint64_t size = 0;
	size_t len = sizeof(size);
	int mib[2] = {CTL_HW, HW_MEMSIZE};
	sysctl(mib, 2, &size, &len, NULL, 0);
	return size;
}
*/
import "C"

import (
	"errors"
	"fmt"
)

func stat() (Stats, error) {
	total := uint64(C.hw_memsize())
	if total == 0 {
		return Stats{}, errors.New("ram: sysctl hw.memsize failed")
	}
	var vm C.vm_statistics64_data_t
	ret := C.vm_stats(&vm)
	if ret != C.KERN_SUCCESS {
		return Stats{}, fmt.Errorf("ram: host_statistics64: kern_return_t=%d", ret)
	}
	page := uint64(C.vm_kernel_page_size)
	return Stats{
		Total: total,
		Free:  uint64(vm.free_count) * page,
	}, nil
}

func limit() (Stats, error) {
	return Stats{}, ErrUnsupported
}
