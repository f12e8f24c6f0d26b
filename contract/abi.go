package contract

// vaultABI the vault contract surface: username registry, vault
// creation/opening, and per-user vault id lists.
const vaultABI = `[
  {"type":"function","name":"registerUsername","stateMutability":"nonpayable","inputs":[{"name":"username","type":"string"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"isUsernameAvailable","stateMutability":"view","inputs":[{"name":"username","type":"string"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getUsernameByAddress","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"getAddressByUsername","stateMutability":"view","inputs":[{"name":"username","type":"string"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"sendSnap","stateMutability":"payable","inputs":[{"name":"recipientUsername","type":"string"},{"name":"metadataCID","type":"string"},{"name":"message","type":"string"},{"name":"unlockDelaySeconds","type":"uint256"},{"name":"kind","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"getSnapData","stateMutability":"view","inputs":[{"name":"id","type":"uint256"}],"outputs":[{"name":"sender","type":"address"},{"name":"recipient","type":"address"},{"name":"metadataCID","type":"string"},{"name":"message","type":"string"},{"name":"amount","type":"uint256"},{"name":"createdAt","type":"uint256"},{"name":"unlockAt","type":"uint256"},{"name":"opened","type":"bool"},{"name":"kind","type":"uint8"}]},
  {"type":"function","name":"canOpenSnap","stateMutability":"view","inputs":[{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"openSnap","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getUserReceivedSnaps","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getUserSentSnaps","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"event","name":"SnapCreated","inputs":[{"name":"id","type":"uint256","indexed":true},{"name":"sender","type":"address","indexed":true},{"name":"recipientUsername","type":"string","indexed":false}],"anonymous":false},
  {"type":"event","name":"SnapOpened","inputs":[{"name":"id","type":"uint256","indexed":true},{"name":"recipient","type":"address","indexed":true}],"anonymous":false}
]`
