package normalizer

// Pattern describes one OS family and the raw strings it is known by in
// RVTools and CloudPhysics exports.
type Pattern struct {
	CanonicalName string
	Vendor        string
	// Family joins the pattern to compatibility matrix rows.
	Family   string
	Variants []string
}

// Library is the built-in pattern catalog. Order matters: when two variants
// score the same, the one listed first wins.
//
// Vague descriptors such as "Other Linux" or "Unknown" are not listed so that
// they fall below the confidence threshold.
var Library = []Pattern{
	{
		CanonicalName: "Windows Server",
		Vendor:        "Microsoft",
		Family:        "Windows Server",
		Variants: []string{
			"Microsoft Windows Server 2025 (64-bit)",
			"Microsoft Windows Server 2022 (64-bit)",
			"Microsoft Windows Server 2019 (64-bit)",
			"Microsoft Windows Server 2016 (64-bit)",
			"Microsoft Windows Server 2012 R2 (64-bit)",
			"Microsoft Windows Server 2012 (64-bit)",
			"Microsoft Windows Server 2008 R2 (64-bit)",
			"Microsoft Windows Server 2008 (64-bit)",
			"Microsoft Windows Server 2003 (32-bit)",
			"Microsoft Windows Server 2003 (64-bit)",
			"Windows Server 2025",
			"Windows Server 2022",
			"Windows Server 2019",
			"Windows Server 2016",
			"Windows Server 2012 R2",
			"Windows Server 2012",
			"Windows Server 2008 R2",
			"Windows Server 2008",
			"Windows Server 2003",
			"Win Server",
			"WinServer",
		},
	},
	{
		CanonicalName: "Windows Desktop",
		Vendor:        "Microsoft",
		Family:        "Windows Desktop",
		Variants: []string{
			"Microsoft Windows 11 (64-bit)",
			"Microsoft Windows 10 (64-bit)",
			"Microsoft Windows 10 (32-bit)",
			"Microsoft Windows 8.1 (64-bit)",
			"Microsoft Windows 8 (64-bit)",
			"Microsoft Windows 7 (64-bit)",
			"Microsoft Windows 7 (32-bit)",
			"Microsoft Windows Vista (64-bit)",
			"Microsoft Windows Vista (32-bit)",
			"Microsoft Windows XP Professional (32-bit)",
			"Microsoft Windows XP Professional (64-bit)",
			"Windows 11",
			"Windows 10",
			"Windows 8.1",
			"Windows 8",
			"Windows 7",
			"Windows Vista",
			"Windows XP",
			"Win 10",
			"Win 11",
		},
	},
	{
		CanonicalName: "RHEL",
		Vendor:        "Red Hat",
		Family:        "RHEL",
		Variants: []string{
			"Red Hat Enterprise Linux 9 (64-bit)",
			"Red Hat Enterprise Linux 8 (64-bit)",
			"Red Hat Enterprise Linux 7 (64-bit)",
			"Red Hat Enterprise Linux 6 (64-bit)",
			"Red Hat Enterprise Linux 5 (64-bit)",
			"Red Hat Enterprise Linux 9",
			"Red Hat Enterprise Linux 8",
			"Red Hat Enterprise Linux 7",
			"Red Hat Enterprise Linux 6",
			"RHEL 9",
			"RHEL 8",
			"RHEL 7",
			"RHEL 6",
			"Red Hat Linux",
			"Red Hat Enterprise Linux",
		},
	},
	{
		CanonicalName: "Ubuntu",
		Vendor:        "Canonical",
		Family:        "Ubuntu",
		Variants: []string{
			"Ubuntu Linux (64-bit)",
			"Ubuntu Linux (32-bit)",
			"Ubuntu 24.04 LTS (64-bit)",
			"Ubuntu 22.04 LTS (64-bit)",
			"Ubuntu 22.04 LTS",
			"Ubuntu 20.04 LTS (64-bit)",
			"Ubuntu 20.04 LTS",
			"Ubuntu 18.04 (64-bit)",
			"Ubuntu 18.04",
			"Ubuntu 16.04 LTS",
			"Ubuntu 24.04",
			"Ubuntu 22.04",
			"Ubuntu 20.04",
			"Ubuntu Linux",
			"Ubuntu",
		},
	},
	{
		CanonicalName: "SLES",
		Vendor:        "SUSE",
		Family:        "SLES",
		Variants: []string{
			"SUSE Linux Enterprise 15 (64-bit)",
			"SUSE Linux Enterprise 12 (64-bit)",
			"SUSE Linux Enterprise Server 15",
			"SUSE Linux Enterprise Server 12",
			"SUSE Linux Enterprise Server 15 SP4",
			"SUSE Linux Enterprise Server 12 SP5",
			"SLES 15",
			"SLES 12",
			"SUSE Linux Enterprise",
			"SUSE Enterprise Linux",
			"OpenSUSE Leap",
			"openSUSE",
		},
	},
	{
		CanonicalName: "CentOS",
		Vendor:        "CentOS",
		Family:        "CentOS",
		Variants: []string{
			"CentOS 8 (64-bit)",
			"CentOS 7 (64-bit)",
			"CentOS 7 (32-bit)",
			"CentOS Linux 8 (64-bit)",
			"CentOS Linux 7 (64-bit)",
			"CentOS Linux 7",
			"CentOS Linux 8",
			"CentOS 8",
			"CentOS 7",
			"CentOS",
		},
	},
	{
		CanonicalName: "Oracle Linux",
		Vendor:        "Oracle",
		Family:        "Oracle Linux",
		Variants: []string{
			"Oracle Linux 9 (64-bit)",
			"Oracle Linux 8 (64-bit)",
			"Oracle Linux 7 (64-bit)",
			"Oracle Linux 9",
			"Oracle Linux 8",
			"Oracle Linux 7",
			"Oracle Enterprise Linux",
			"Oracle Linux",
		},
	},
	{
		CanonicalName: "Debian",
		Vendor:        "Debian",
		Family:        "Debian",
		Variants: []string{
			"Debian GNU/Linux 12 (64-bit)",
			"Debian GNU/Linux 11 (64-bit)",
			"Debian GNU/Linux 10 (64-bit)",
			"Debian GNU/Linux 12",
			"Debian GNU/Linux 11",
			"Debian GNU/Linux 10",
			"Debian 12",
			"Debian 11",
			"Debian 10",
			"Debian Linux",
			"Debian",
		},
	},
	{
		CanonicalName: "Fedora",
		Vendor:        "Fedora",
		Family:        "Fedora",
		Variants: []string{
			"Fedora Linux (64-bit)",
			"Fedora Linux 40 (64-bit)",
			"Fedora Linux 39 (64-bit)",
			"Fedora Linux 38 (64-bit)",
			"Fedora Linux 37 (64-bit)",
			"Fedora Linux 40",
			"Fedora Linux 39",
			"Fedora Linux",
			"Fedora 40",
			"Fedora 39",
			"Fedora",
		},
	},
	{
		CanonicalName: "Citrix Virtual Apps",
		Vendor:        "ISV",
		Family:        "Citrix Virtual Apps",
		Variants: []string{
			"Citrix Virtual Apps",
			"Citrix Virtual Apps and Desktops",
			"Citrix XenApp",
			"Citrix XenDesktop",
			"Citrix DaaS",
			"Citrix",
		},
	},
	{
		CanonicalName: "Omnissa Horizon",
		Vendor:        "ISV",
		Family:        "Omnissa Horizon",
		Variants: []string{
			"Omnissa Horizon",
			"VMware Horizon",
			"VMware Horizon View",
			"Horizon View",
			"Horizon Client",
		},
	},
	{
		CanonicalName: "HP Anyware",
		Vendor:        "ISV",
		Family:        "HP Anyware",
		Variants: []string{
			"HP Anyware",
			"Teradici PCoIP",
			"PCoIP",
			"HP Remote Workstation",
		},
	},
	{
		CanonicalName: "DOS",
		Vendor:        "Generic",
		Family:        "DOS",
		Variants: []string{
			"MS-DOS",
			"MS DOS",
			"DOS",
			"FreeDOS",
		},
	},
	{
		CanonicalName: "OS/2",
		Vendor:        "IBM",
		Family:        "OS/2",
		Variants: []string{
			"OS/2",
			"IBM OS/2",
			"OS2",
		},
	},
	{
		CanonicalName: "NetWare",
		Vendor:        "Novell",
		Family:        "NetWare",
		Variants: []string{
			"Novell NetWare 6.x",
			"Novell NetWare 5.x",
			"Novell NetWare",
			"NetWare",
		},
	},
	{
		CanonicalName: "FreeBSD",
		Vendor:        "FreeBSD Project",
		Family:        "FreeBSD",
		Variants: []string{
			"FreeBSD (64-bit)",
			"FreeBSD (32-bit)",
			"FreeBSD 14",
			"FreeBSD 13",
			"FreeBSD",
		},
	},
	{
		CanonicalName: "Solaris",
		Vendor:        "Oracle",
		Family:        "Solaris",
		Variants: []string{
			"Solaris 11 (64-bit)",
			"Solaris 10 (64-bit)",
			"Oracle Solaris 11",
			"Oracle Solaris 10",
			"Solaris 11",
			"Solaris 10",
			"Solaris",
		},
	},
}
