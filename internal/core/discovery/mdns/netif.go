package mdns

import (
	"net"
	"sort"
	"strings"
)

// virtualInterfacePrefixes 跨机通常不可达的虚拟网卡
var virtualInterfacePrefixes = []string{
	"utun", "ipsec", "awdl", "llw",
	"docker", "br-", "veth", "virbr", "vboxnet", "vmnet",
	"tun", "tap", "dummy",
	"tailscale", "wg",
}

func isVirtualInterface(name string) bool {
	name = strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// cgnat 100.64.0.0/10，常被 VPN 占用
var cgnat = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// scoreLANIP 局域网地址评分，0 表示不适合广播
func scoreLANIP(ip net.IP) int {
	if ip == nil || ip.IsLoopback() || ip.IsUnspecified() || cgnat.Contains(ip) {
		return 0
	}

	base := 100
	ip4 := ip.To4()
	if ip4 != nil {
		base = 1000
	}

	switch {
	case ip4 != nil && ip4[0] == 192 && ip4[1] == 168:
		return base + 300
	case ip4 != nil && ip4[0] == 10:
		return base + 200
	case ip4 != nil && ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31:
		return base + 100
	case ip.IsPrivate():
		return base + 50
	case ip.IsLinkLocalUnicast():
		return base + 10
	}
	return 0
}

// localIPs 返回可广播的本地地址，按评分降序
func localIPs(ifaceName string, disableIPv6 bool) ([]net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	type scored struct {
		ip    net.IP
		score int
	}
	var out []scored

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if ifaceName != "" && iface.Name != ifaceName {
			continue
		}
		if ifaceName == "" && isVirtualInterface(iface.Name) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP
			if ip.To4() == nil && disableIPv6 {
				continue
			}
			if s := scoreLANIP(ip); s > 0 {
				out = append(out, scored{ip: ip, score: s})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	ips := make([]net.IP, len(out))
	for i, s := range out {
		ips[i] = s.ip
	}
	return ips, nil
}
