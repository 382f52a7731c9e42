package config

import (
	"encoding/binary"
	"fmt"
	"net"
)

// SubnetPlan is the CIDR layout of the VPC: one public and one private subnet
// per availability zone.
type SubnetPlan struct {
	Public  []string
	Private []string
}

// Subnets carves the VPC CIDR into public subnets (first MaxAZs blocks) and
// private subnets (next MaxAZs blocks).
func (n NetworkConfig) Subnets() (SubnetPlan, error) {
	var plan SubnetPlan
	for i := 0; i < n.MaxAZs; i++ {
		pub, err := CIDRSubnet(n.CIDR, n.SubnetBits, i)
		if err != nil {
			return SubnetPlan{}, fmt.Errorf("public subnet %d: %w", i, err)
		}
		priv, err := CIDRSubnet(n.CIDR, n.SubnetBits, n.MaxAZs+i)
		if err != nil {
			return SubnetPlan{}, fmt.Errorf("private subnet %d: %w", i, err)
		}
		plan.Public = append(plan.Public, pub)
		plan.Private = append(plan.Private, priv)
	}
	return plan, nil
}

// CIDRSubnet calculates a subnet address given a network address, a netmask
// size increase, and a subnet number, like Terraform's cidrsubnet.
//
// Only IPv4 is supported.
func CIDRSubnet(prefix string, newbits int, netnum int) (string, error) {
	_, network, err := net.ParseCIDR(prefix)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR prefix: %w", err)
	}

	if network.IP.To4() == nil {
		return "", fmt.Errorf("only IPv4 addresses are supported, got IPv6: %s", prefix)
	}
	if newbits < 0 || netnum < 0 {
		return "", fmt.Errorf("newbits and netnum must not be negative")
	}

	maskSize, totalBits := network.Mask.Size()
	newMaskSize := maskSize + newbits

	if newMaskSize > totalBits {
		return "", fmt.Errorf("prefix extension of %d bits is too large for %s", newbits, prefix)
	}

	maxSubnets := 1 << newbits
	if netnum >= maxSubnets {
		return "", fmt.Errorf("subnet number %d exceeds max subnets %d", netnum, maxSubnets)
	}

	ipInt := ipToUint(network.IP.To4())
	subnetSize := uint64(1) << (totalBits - newMaskSize)
	ipInt += uint64(netnum) * subnetSize

	return fmt.Sprintf("%s/%d", uintToIP(ipInt).String(), newMaskSize), nil
}

func ipToUint(ip net.IP) uint64 {
	return uint64(binary.BigEndian.Uint32(ip))
}

func uintToIP(val uint64) net.IP {
	ip := make(net.IP, 4)
	// #nosec G115
	binary.BigEndian.PutUint32(ip, uint32(val))
	return ip
}
