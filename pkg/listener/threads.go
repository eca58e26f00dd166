package listener

import (
	"errors"
	"math/bits"
	"strconv"
	"strings"
)

const MaxThreads = 64

var (
	ErrInvalidThreads = errors.New("listener: invalid thread set")
)

// ThreadMask selects the worker threads servicing a bound socket. Bit n
// stands for thread n+1.
type ThreadMask uint64

const AllThreads = ^ThreadMask(0)

// ParseThreadMask parses "all" or a comma separated list of thread numbers
// and ranges, such as "1-4,8". An empty string means all threads.
func ParseThreadMask(s string) (ThreadMask, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return AllThreads, nil
	}

	var m ThreadMask
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(lo)
		if err != nil {
			return 0, ErrInvalidThreads
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(hi); err != nil {
				return 0, ErrInvalidThreads
			}
		}
		if first < 1 || last > MaxThreads || first > last {
			return 0, ErrInvalidThreads
		}
		for i := first; i <= last; i++ {
			m |= 1 << (i - 1)
		}
	}
	return m, nil
}

// Count returns the number of selected threads.
func (m ThreadMask) Count() int {
	return bits.OnesCount64(uint64(m))
}

func (m ThreadMask) String() string {
	if m == AllThreads {
		return "all"
	}

	var parts []string
	for i := 0; i < MaxThreads; {
		if m&(1<<i) == 0 {
			i++
			continue
		}
		j := i
		for j+1 < MaxThreads && m&(1<<(j+1)) != 0 {
			j++
		}
		if i == j {
			parts = append(parts, strconv.Itoa(i+1))
		} else {
			parts = append(parts, strconv.Itoa(i+1)+"-"+strconv.Itoa(j+1))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
